// Package testdata builds small, hand-constructed ast.Program fixtures for
// cmd/cppsem-dump, standing in for
// the (out-of-scope) parser: every node is wired up directly the way a
// parser's output would look, grounded on the internal/sema test files'
// same by-hand AST construction style.
package testdata

import (
	"github.com/cppsem/cppsem/internal/ast"
	"github.com/cppsem/cppsem/internal/token"
)

func name(s string) *ast.CppName {
	return &ast.CppName{Tag: ast.NamePlain, Tokens: []token.Token{{Kind: token.Identifier, Lexeme: s}}}
}

func plain(s string) *ast.NameSyntax {
	return &ast.NameSyntax{Name: name(s)}
}

func idType(s string) *ast.IdType {
	return &ast.IdType{Name: plain(s)}
}

// SampleProgram returns a small translation unit exercising a namespace, a
// base/derived class pair, a class template, and a free function with a
// deduced (`auto`) return type, for a cmd/cppsem-dump smoke run. It has no
// member function, enum or type alias, so it does not reach every
// Declaration Driver branch.
func SampleProgram() *ast.Program {
	shape := &ast.ClassDeclaration{
		NameTok: name("Shape"),
		Kind:    ast.KindClass,
		Members: []ast.Declaration{
			&ast.VariableDeclaration{NameTok: name("area"), TypeExpr: idType("double")},
		},
	}
	circle := &ast.ClassDeclaration{
		NameTok: name("Circle"),
		Kind:    ast.KindClass,
		Bases:   []ast.BaseSpecifier{{Name: plain("Shape")}},
		Members: []ast.Declaration{
			&ast.VariableDeclaration{NameTok: name("radius"), TypeExpr: idType("double")},
		},
	}
	box := &ast.ClassDeclaration{
		NameTok:   name("Box"),
		Kind:      ast.KindClass,
		Templates: []*ast.TemplateParamDecl{{NameTok: name("T"), IsType: true}},
		Members: []ast.Declaration{
			&ast.VariableDeclaration{NameTok: name("value"), TypeExpr: idType("T")},
		},
	}
	makeUnit := &ast.FunctionDeclaration{
		NameTok:    name("makeUnit"),
		ReturnType: &ast.AutoType{},
		Body: &ast.CompoundStatement{Body: []ast.Statement{
			&ast.ReturnStatement{Value: &ast.LiteralExpr{Kind: ast.IntLit, Raw: "1"}},
		}},
	}

	geometry := &ast.NamespaceDeclaration{
		NameTok: name("geometry"),
		Members: []ast.Declaration{shape, circle, box, makeUnit},
	}

	return &ast.Program{
		File:  "sample.cpp",
		Decls: []ast.Declaration{geometry},
	}
}
