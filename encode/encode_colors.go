package encode

import (
	"github.com/fatih/color"
	"github.com/signadot/recs/record"
)

type Colorable struct {
	Type record.Type
	Attr ColorAttr
}

type ColorAttr int

const (
	FieldColor ColorAttr = iota
	ValueColor
	SepColor
)

type Colors struct {
	Default func(string, ...any) string
	Map     map[Colorable]func(string, ...any) string
}

func NewColors() *Colors {
	colors := &Colors{
		Default: colorDefault,
		Map:     map[Colorable]func(string, ...any) string{},
	}
	for _, t := range record.Types() {
		colors.Map[Colorable{Type: t, Attr: SepColor}] = sprint(color.New(color.FgHiBlack))
	}
	able := Colorable{Attr: ValueColor}

	able.Type = record.NumberType
	colors.Map[able] = sprint(color.RGB(128, 216, 236))

	able.Type = record.NullType
	colors.Map[able] = sprint(color.RGB(168, 0, 196))

	able.Type = record.BoolType
	colors.Map[able] = sprint(color.New(color.FgCyan))

	able.Type = record.StringType
	colors.Map[able] = sprint(color.RGB(8, 196, 16))

	able.Type = record.ObjectType
	able.Attr = FieldColor
	colors.Map[able] = sprint(color.RGB(128, 168, 196))
	return colors
}

// sprint formats its first argument verbatim, so '%' in values is kept.
func sprint(c *color.Color) func(string, ...any) string {
	f := c.SprintFunc()
	return func(v string, _ ...any) string {
		return f(v)
	}
}

func colorDefault(v string, _ ...any) string { return v }

func (c *Colors) Color(t record.Type, a ColorAttr, s string) string {
	return c.Get(t, a)(s)
}

func (c *Colors) Get(t record.Type, a ColorAttr) func(string, ...any) string {
	f := c.Map[Colorable{Type: t, Attr: a}]
	if f == nil {
		return c.Default
	}
	return f
}
