// Package spell mines log templates from a stream of free-text lines.
//
// Lines that share an invariant token skeleton are grouped into one Template,
// and the tokens that vary between lines become wildcards:
//
//	Command Failed on: node-127,node-234
//	Command Failed on: node-128,node-234    =>  Command Failed on: *
//	Command Failed on: node-129,node-235
//
// Matching works in four steps:
//
//  1. Tokenize - split the line on whitespace, or a custom delimiter set
//  2. Lookup - fetch the templates with the same token count
//  3. Score - compute the longest common subsequence against each candidate
//  4. Update - merge into the best candidate, or register a new template
//
// Basic usage:
//
//	engine := spell.New(spell.WithDelimiters(spell.DefaultDelimiters))
//	defer engine.Close()
//
//	h, err := engine.Insert("Command Failed on: node-127")
//	if err != nil {
//	    return err
//	}
//	defer func() { _ = h.Release() }()
//
//	toks, err := h.Tokens()
//	if err != nil {
//	    return err
//	}
//	for i, tok := range toks {
//	    fmt.Println(i, tok)
//	}
//
// An Engine is not safe for concurrent use. Independent engines share no state.
package spell
