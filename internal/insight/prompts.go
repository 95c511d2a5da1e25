package insight

// %[1]d minimum insight count, %[2]s user name, %[3]s actions, %[4]s feelings.
const insightPrompt = `
Your task is to produce a set of insights given observations about a user.

An "Insight" is a remarkable realization that you could leverage to better respond to a design challenge. Insights often grow from contradictions between two user observations or from asking yourself "Why?" when you notice strange behavior. One way to identify the seeds of insights is to capture "tensions" and "contradictions" as you work.

Given this input, produce at least %[1]d insights about %[2]s. Focus only on the insights, not on potential solutions for the design challenge. Provide both the insights and evidence from the input that support the insight in the output.

# Input
You are provided these traits from direct observation about what %[2]s is doing and feeling:

WHAT %[2]s DID:
%[3]s

WHAT %[2]s FELT:
%[4]s
`

// %[1]s is the prose insight list from the first synthesis call.
const formatPrompt = `
You are an expert in formatting insights into a JSON format. Your task is to format a list of insights provided in prose into a JSON format.

# Input
You are provided with a list of insights in prose format.
%[1]s

# Output
Return your results in this exact JSON format:
{
    "insights": [
        {
            "title": "Thematic title of the insight",
            "insight": "Insight in 3-4 sentences",
            "context": "[1-2 sentences when this insight might apply (e.g., when writing text, in social settings)]",
            "supporting_evidence": "[1-2 sentences providing specific evidence from the input, explicitly naming entities, supporting this insight]"
        },
        {
            "title": "Thematic title of the insight",
            "insight": "Insight in 3-4 sentences",
            "context": "[1-2 sentences when this insight might apply (e.g., when writing text, in social settings)]",
            "supporting_evidence": "[1-2 sentences providing specific evidence from the input, explicitly naming entities, supporting this insight]"
        }
        ...
    ]
}
Do not include any other text in your response.
`

// %[1]d days covered, %[2]s user name, %[3]s serialized day-level insights.
const synthesisPrompt = `
Your task is to merge insights observed about a user across multiple days into a smaller set of meta-insights.

A "Meta-Insight" is a higher-confidence generalization that holds across days, not a restatement of any single day's insight. Favor patterns that recur, and tensions that persist, across the span of days; discard one-off observations that no other day corroborates.

You are provided the full set of day-level insights about %[2]s collected over %[1]d day(s). Synthesize the strongest cross-day meta-insights, each grounded in the day-level insights that support it.

# Input
Day-level insights about %[2]s:
%[3]s

# Output
Return your results in this exact JSON format, with no other text:
{
    "insights": [
        {
            "title": "Thematic title of the meta-insight",
            "tagline": "One short memorable phrase capturing the meta-insight",
            "insight": "Meta-insight in 3-4 sentences",
            "context": "[1-2 sentences when this meta-insight might apply]",
            "reasoning": "[1-2 sentences naming the day-level insights that support this meta-insight]"
        }
        ...
    ]
}
`
