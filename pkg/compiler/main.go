// Package compiler lowers a small strict expression language to x86-64
// stack-machine assembly text.
//
// Pipeline: source → Lex → Parse → Annotate → ToANF → CompileExpr → render
package compiler
