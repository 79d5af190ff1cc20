package report

const summaryPrompt = `You are an expert customer feedback analyst. Given the counts of customer feedback sentiments in a selected period and sample feedbacks, write a concise, insightful summary report.

Your summary MUST mention both the very positive and very negative feedbacks, using the provided counts and the sample comments to highlight key strengths and urgent issues.
Summarize the overall customer sentiment trend, notable positives, and areas needing immediate attention. Do not include any heading or title in your summary.
Write coherent paragraphs with a smooth flow of ideas.
If there is no feedback in the period, say so plainly.
End with a final paragraph giving an overall overview of the period.

Period: %s to %s

Sentiment Counts:
Very Positive: %d
Positive: %d
Neutral: %d
Negative: %d
Very Negative: %d

Sample Very Positive Feedbacks:
%s

Sample Very Negative Feedbacks:
%s

Use the sample feedbacks to provide concrete examples in your summary.
`
