// Package render decides how a freshly rendered window reaches the chat.
//
// Decide is pure: it compares the remembered last message with the new one and picks
// a transport operation. Apply executes that plan against a ports.Transport and returns
// the message to remember for the next render.
package render
