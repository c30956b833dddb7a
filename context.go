package docmodel

import "context"

// Context is the conversion context handed to declaration converters: the
// pass's program, the container new reflections attach to, and the owning
// Converter. It is a small value; WithContainer returns a modified copy.
type Context struct {
	program   Program
	container Container
	converter *Converter
}

func (cc Context) Program() Program      { return cc.program }
func (cc Context) Container() Container  { return cc.container }
func (cc Context) Converter() *Converter { return cc.converter }

// WithContainer returns a copy of cc targeting container.
func (cc Context) WithContainer(container Container) Context {
	cc.container = container
	return cc
}

// ConvertSymbol converts symbol into cc's container.
func (cc Context) ConvertSymbol(ctx context.Context, symbol *Symbol) error {
	return cc.converter.ConvertSymbol(ctx, symbol, cc)
}

// ConvertMembers converts every member of symbol into cc's container, in
// provider order.
func (cc Context) ConvertMembers(ctx context.Context, symbol *Symbol) error {
	for _, member := range cc.program.Members(symbol) {
		if err := cc.ConvertSymbol(ctx, member); err != nil {
			return err
		}
	}
	return nil
}
