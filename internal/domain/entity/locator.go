package entity

import "fmt"

type Strategy string

const (
	StrategyCSS   Strategy = "css"
	StrategyXPath Strategy = "xpath"
	StrategyID    Strategy = "id"
	StrategyClass Strategy = "class"
)

// Locator identifies zero or more elements. It is a plain value: compare with ==.
type Locator struct {
	Strategy   Strategy
	Expression string
}

func CSS(expr string) Locator       { return Locator{Strategy: StrategyCSS, Expression: expr} }
func XPath(expr string) Locator     { return Locator{Strategy: StrategyXPath, Expression: expr} }
func ID(id string) Locator          { return Locator{Strategy: StrategyID, Expression: id} }
func ClassName(name string) Locator { return Locator{Strategy: StrategyClass, Expression: name} }

func (l Locator) String() string {
	return fmt.Sprintf("%s=%s", l.Strategy, l.Expression)
}

func (l Locator) IsZero() bool {
	return l.Expression == ""
}
