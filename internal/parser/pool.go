package parser

import "sync"

var (
	parserPool     sync.Pool
	parserPoolOnce sync.Once
)

// GetSharedParser returns a parser from the shared pool, creating one when
// the pool is empty. Call ReleaseParser when done with it.
func GetSharedParser() (*Parser, error) {
	parserPoolOnce.Do(func() {
		parserPool.New = func() any {
			p, err := NewParser()
			if err != nil {
				return err
			}
			return p
		}
	})

	switch v := parserPool.Get().(type) {
	case *Parser:
		return v, nil
	case error:
		return nil, v
	default:
		return NewParser()
	}
}

// ReleaseParser returns a parser to the pool for reuse. Closed parsers are
// dropped.
func ReleaseParser(p *Parser) {
	if p != nil && p.parser != nil {
		parserPool.Put(p)
	}
}
