// Package preprocess rewrites log lines before they reach the template engine
// or a language model.
//
// A Masker replaces well-known variable values with a fixed placeholder so
// that they cannot split lines which otherwise share a skeleton:
//
//	"Connection from 10.0.0.7 refused" -> "Connection from <IPV4> refused"
//
// A Redactor replaces sensitive values with a short hash, keeping equal
// values equal without exposing them:
//
//	"login by bob@example.com" -> "login by [EMAIL:5ff8]"
//
// Pattern sets are selected by name in ~/.spell.yaml:
//
//	mask:
//	  - ipv4
//	  - uuid
//	  - number
package preprocess
