package ast

type NodeType string

const (
	NodeNumber    NodeType = "Number"
	NodeBoolean   NodeType = "Boolean"
	NodeVariable  NodeType = "Variable"
	NodeAdd       NodeType = "Add"
	NodeMultiply  NodeType = "Multiply"
	NodeLessThan  NodeType = "LessThan"
	NodeDoNothing NodeType = "DoNothing"
	NodeAssign    NodeType = "Assign"
	NodeIf        NodeType = "If"
	NodeSequence  NodeType = "Sequence"
	NodeWhile     NodeType = "While"
)

// NodeTypes lists every node kind in declaration order.
var NodeTypes = []NodeType{
	NodeNumber,
	NodeBoolean,
	NodeVariable,
	NodeAdd,
	NodeMultiply,
	NodeLessThan,
	NodeDoNothing,
	NodeAssign,
	NodeIf,
	NodeSequence,
	NodeWhile,
}

// Node is the closed set of SIMPLE syntax. Only types in this package implement it.
type Node interface {
	NodeType() NodeType
	Span() Span
	isNode()
}

type nodeImpl struct {
	Type NodeType `json:"type"`
	span Span
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n nodeImpl) NodeType() NodeType { return n.Type }
func (n nodeImpl) Span() Span         { return n.span }
func (n *nodeImpl) setSpan(span Span) { n.span = span }
func (nodeImpl) isNode()              {}

// Marker interfaces.

type Expression interface {
	Node
	expressionNode()
}

type expressionMarker struct{}

func (expressionMarker) expressionNode() {}

type Statement interface {
	Node
	statementNode()
}

type statementMarker struct{}

func (statementMarker) statementNode() {}

// Value is an expression in normal form: a Number or a Boolean.
type Value interface {
	Expression
	valueNode()
}

type valueMarker struct{}

func (valueMarker) valueNode() {}

// Values

type Number struct {
	nodeImpl
	expressionMarker
	valueMarker

	Value int64 `json:"value"`
}

func NewNumber(value int64) *Number {
	return &Number{nodeImpl: newNodeImpl(NodeNumber), Value: value}
}

type Boolean struct {
	nodeImpl
	expressionMarker
	valueMarker

	Value bool `json:"value"`
}

func NewBoolean(value bool) *Boolean {
	return &Boolean{nodeImpl: newNodeImpl(NodeBoolean), Value: value}
}

// Expressions

type Variable struct {
	nodeImpl
	expressionMarker

	Name string `json:"name"`
}

func NewVariable(name string) *Variable {
	return &Variable{nodeImpl: newNodeImpl(NodeVariable), Name: name}
}

type AddExpression struct {
	nodeImpl
	expressionMarker

	Left  Expression `json:"left"`
	Right Expression `json:"right"`
}

func NewAdd(left, right Expression) *AddExpression {
	return &AddExpression{nodeImpl: newNodeImpl(NodeAdd), Left: left, Right: right}
}

type MultiplyExpression struct {
	nodeImpl
	expressionMarker

	Left  Expression `json:"left"`
	Right Expression `json:"right"`
}

func NewMultiply(left, right Expression) *MultiplyExpression {
	return &MultiplyExpression{nodeImpl: newNodeImpl(NodeMultiply), Left: left, Right: right}
}

type LessThanExpression struct {
	nodeImpl
	expressionMarker

	Left  Expression `json:"left"`
	Right Expression `json:"right"`
}

func NewLessThan(left, right Expression) *LessThanExpression {
	return &LessThanExpression{nodeImpl: newNodeImpl(NodeLessThan), Left: left, Right: right}
}

// Statements

type DoNothing struct {
	nodeImpl
	statementMarker
}

func NewDoNothing() *DoNothing {
	return &DoNothing{nodeImpl: newNodeImpl(NodeDoNothing)}
}

type AssignStatement struct {
	nodeImpl
	statementMarker

	Name       string     `json:"name"`
	Expression Expression `json:"expression"`
}

func NewAssign(name string, expression Expression) *AssignStatement {
	return &AssignStatement{nodeImpl: newNodeImpl(NodeAssign), Name: name, Expression: expression}
}

type IfStatement struct {
	nodeImpl
	statementMarker

	Condition   Expression `json:"condition"`
	Consequence Statement  `json:"consequence"`
	Alternative Statement  `json:"alternative"`
}

func NewIf(condition Expression, consequence, alternative Statement) *IfStatement {
	return &IfStatement{
		nodeImpl:    newNodeImpl(NodeIf),
		Condition:   condition,
		Consequence: consequence,
		Alternative: alternative,
	}
}

type SequenceStatement struct {
	nodeImpl
	statementMarker

	First  Statement `json:"first"`
	Second Statement `json:"second"`
}

func NewSequence(first, second Statement) *SequenceStatement {
	return &SequenceStatement{nodeImpl: newNodeImpl(NodeSequence), First: first, Second: second}
}

type WhileLoop struct {
	nodeImpl
	statementMarker

	Condition Expression `json:"condition"`
	Body      Statement  `json:"body"`
}

func NewWhile(condition Expression, body Statement) *WhileLoop {
	return &WhileLoop{nodeImpl: newNodeImpl(NodeWhile), Condition: condition, Body: body}
}

// IsReducible reports whether another rewrite step exists for the node. It depends only on
// the node's kind: values and DoNothing are normal forms, everything else reduces.
func IsReducible(node Node) bool {
	switch node.(type) {
	case *Number, *Boolean, *DoNothing:
		return false
	case *Variable, *AddExpression, *MultiplyExpression, *LessThanExpression, *AssignStatement, *IfStatement, *SequenceStatement, *WhileLoop:
		return true
	default:
		return false
	}
}

// IsDoNothing reports whether node is the terminal statement. All DoNothing nodes are equal.
func IsDoNothing(node Node) bool {
	_, ok := node.(*DoNothing)
	return ok
}

// IsValue reports whether node is a Number or Boolean.
func IsValue(node Node) bool {
	_, ok := node.(Value)
	return ok
}
