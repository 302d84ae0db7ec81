// Package mocks provides shared mock implementations for testing.
//
// # Usage
//
//	import "triad/internal/mocks"
//
//	func TestSomething(t *testing.T) {
//	    backend := mocks.NewMockLLMClient()
//	    backend.RespondWithSequence("requirements", "```html\n<p>hi</p>\n```", "APPROVED")
//	    // Use backend in test...
//	}
//
// # Available Mocks
//
//   - MockLLMClient: Mock for pkg/agent/llm.LLMClient
//   - MockPublisher: Mock for pkg/artifact.Publisher
package mocks
