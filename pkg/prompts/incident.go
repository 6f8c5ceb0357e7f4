package prompts

import "fmt"

// SystemPrompt fixes the responder role and the three required report
// sections. Kept as one constant so every caller sends the same instruction.
const SystemPrompt = `You are LLM 911, an expert AI incident responder.

You will be given two JSON objects:
- One from an error-tracking system describing an application or infrastructure incident.
- One from a model-monitoring system describing an LLM/model trace.

Your job is to carefully read both, correlate the information, and then
produce a concise but thorough incident report aimed at an on-call
engineer who is familiar with LLM systems.

The report MUST be plain text and structured with clear headings:
1) Root Cause
2) Fix Plan
3) Infra / Latency / Timeout Observations

Be specific and actionable. If some information is missing, call that
out explicitly and state reasonable assumptions.`

// BuildIncidentPrompt assembles the user message: provider health, the
// heuristic code review, then both raw documents as fenced JSON blocks.
func BuildIncidentPrompt(healthSummary, reviewSummary, errorJSON, traceJSON string) string {
	return fmt.Sprintf(`Provider status summary:
%s

Here is a rule-based review of the related source code:
%s

Here is the error-tracking incident JSON:
`+"```json\n%s\n```"+`

Here is the model trace JSON:
`+"```json\n%s\n```"+`

Using ONLY the information above and reasonable engineering judgment,
write the incident report now.`, healthSummary, reviewSummary, errorJSON, traceJSON)
}
