// Package interpreter runs SIMPLE programs two ways. Machine applies Reduce one
// transition at a time and reports every intermediate state to a TraceSink;
// Evaluate and Execute compute the same results in a single recursive pass.
// CrossCheck runs both and diffs them, and the program fixtures under fixtures/
// keep the two engines in parity.
package interpreter
