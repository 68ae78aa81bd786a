// Package extract orchestrates invoice extraction: it routes a prepared
// document to one of the named backend pipelines, normalizes whatever shape
// the backend produced, and caches the result.
package extract

import "fmt"

// Method names one extraction pipeline. The string values are the public
// identifiers used on the CLI and in cache keys; they never change once
// released.
type Method string

const (
	// MethodDIGPTImage runs the Document AI layout pass and sends both the
	// layout markdown and the page image to the multimodal deployment.
	MethodDIGPTImage Method = "di_gpt_image"

	// MethodDIGPTNoImage runs the layout pass and sends only its markdown.
	MethodDIGPTNoImage Method = "di_gpt_no_image"

	// MethodGPTOnly sends only the page image to the multimodal deployment.
	MethodGPTOnly Method = "gpt_only"

	// MethodDISmallLLM runs the layout pass and sends its markdown to the
	// small instruction deployment, which replies with free-form text.
	MethodDISmallLLM Method = "di_small_llm"

	// MethodClaudeVision sends the page image to the Bedrock-hosted Claude
	// model.
	MethodClaudeVision Method = "claude_vision"

	// MethodBedrockAutomation runs the Bedrock Data Automation pipeline and
	// feeds its markdown plus the page image to Claude.
	MethodBedrockAutomation Method = "bedrock_automation"

	// MethodTextractClaude runs Textract OCR and feeds its text plus the page
	// image to Claude.
	MethodTextractClaude Method = "textract_claude"

	// MethodVisionGPT runs Google Vision OCR and feeds its text plus the page
	// image to the multimodal deployment.
	MethodVisionGPT Method = "vision_gpt"
)

// Methods returns every known method in the order comparison mode runs them.
func Methods() []Method {
	return []Method{
		MethodDIGPTImage,
		MethodDIGPTNoImage,
		MethodGPTOnly,
		MethodDISmallLLM,
		MethodVisionGPT,
		MethodClaudeVision,
		MethodTextractClaude,
		MethodBedrockAutomation,
	}
}

// MethodNames returns the string identifiers of every known method.
func MethodNames() []string {
	methods := Methods()
	names := make([]string, len(methods))
	for i, m := range methods {
		names[i] = string(m)
	}
	return names
}

// ParseMethod validates a method identifier from user input.
func ParseMethod(s string) (Method, error) {
	for _, m := range Methods() {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}
