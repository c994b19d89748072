// Package prompt builds the LLM prompts used to describe mined templates.
//
// # Prompt types
//
//   - [TypeDescribe] asks for a one-line description of a single template
//   - [TypeOverview] asks for a short summary of a whole template set
//
// # Basic usage
//
//	messages, err := prompt.Build(prompt.TypeDescribe, prompt.BuildOptions{
//	    Template: snap,
//	    Example:  "Command Failed on: node-127,node-234",
//	})
//	if err != nil {
//	    return err
//	}
//	resp, err := provider.Chat(ctx, messages, chatOpts)
//
// Wildcard slots are explained to the model in the system prompt, so a
// template can be sent as rendered by the engine.
package prompt
