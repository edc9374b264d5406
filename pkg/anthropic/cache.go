package anthropic

// BuildCachedSystemBlocks wraps a system prompt in a single cached block.
// The classifier sends the same system prompt for every lead in a run, so
// caching it means only the first call pays the full input-token price.
func BuildCachedSystemBlocks(text string) []SystemBlock {
	return []SystemBlock{
		{
			Text:         text,
			CacheControl: &CacheControl{TTL: "1h"},
		},
	}
}
