package tools

var catalog = [kindCount]ToolMetadata{
	KindSemanticSearch: {
		Name: "semantic_search",
		Description: `Search the chat message history for relevant messages.
Use this to find specific conversations, mentions of people, topics, or events.
Call it multiple times with different phrasings to gather comprehensive context.`,
		Parameters: []ToolParameter{
			{Name: "query", ParamType: "string", Description: "The search query. Be specific and try variations.", Required: true},
			{Name: "num_results", ParamType: "integer", Description: "Number of results to return (1-20, default 8)"},
		},
	},
	KindSearchByAuthor: {
		Name:        "search_by_author",
		Description: "Search for messages written by a specific person. Use when the question is about what someone said or thinks.",
		Parameters: []ToolParameter{
			{Name: "query", ParamType: "string", Description: "What to search for in that person's messages", Required: true},
			{Name: "username", ParamType: "string", Description: "Author name (case-insensitive, partial match)", Required: true},
			{Name: "num_results", ParamType: "integer", Description: "Number of results to return (1-20, default 8)"},
		},
	},
	KindSearchByTimeRange: {
		Name: "search_by_time_range",
		Description: `Search for messages within a time window.
Times may be ISO dates (2024-01-31) or relative expressions such as "yesterday", "last week", "3 days ago".`,
		Parameters: []ToolParameter{
			{Name: "query", ParamType: "string", Description: "The search query", Required: true},
			{Name: "start", ParamType: "string", Description: "Start of the window (ISO date or relative expression)", Required: true},
			{Name: "end", ParamType: "string", Description: "End of the window (defaults to now)"},
			{Name: "num_results", ParamType: "integer", Description: "Number of results to return (1-20, default 8)"},
		},
	},
	KindNeighborhoodLookup: {
		Name:        "neighborhood_lookup",
		Description: "Get the messages just before and after a moment in time, to read a conversation in context.",
		Parameters: []ToolParameter{
			{Name: "timestamp", ParamType: "string", Description: "Target time: Unix milliseconds or ISO date/time", Required: true},
			{Name: "before", ParamType: "integer", Description: "Messages before the target (1-20, default 5)"},
			{Name: "after", ParamType: "integer", Description: "Messages after the target (1-20, default 5)"},
		},
	},
	KindAuthorActivity: {
		Name:        "author_activity",
		Description: "Summarize a person's activity: message count, first and last message time, and frequent terms.",
		Parameters: []ToolParameter{
			{Name: "username", ParamType: "string", Description: "Author name", Required: true},
		},
	},
	KindCountMentions: {
		Name:        "count_mentions",
		Description: "Count how often a term is mentioned. Approximate: based on a sample of the most relevant messages.",
		Parameters: []ToolParameter{
			{Name: "term", ParamType: "string", Description: "Word or phrase to count", Required: true},
		},
	},
	KindRecentMessages: {
		Name:        "recent_messages",
		Description: "Get the most recent messages, newest first.",
		Parameters: []ToolParameter{
			{Name: "num_results", ParamType: "integer", Description: "Number of messages to return (1-50, default 20)"},
		},
	},
	KindSelfAssessment: {
		Name:        "self_assessment",
		Description: "Assess whether the findings so far are enough to answer. Returns a recommendation to proceed or search more.",
		Parameters: []ToolParameter{
			{Name: "question", ParamType: "string", Description: "The original question", Required: true},
			{Name: "findings_summary", ParamType: "string", Description: "Short summary of what has been found", Required: true},
			{Name: "confidence", ParamType: "string", Description: "Your confidence: high, medium or low", Required: true},
		},
	},
}
