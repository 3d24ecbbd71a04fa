package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock_PlainJSON(t *testing.T) {
	input := `{"key": "value"}`
	result := CleanJSONBlock(input)
	assert.Equal(t, `{"key": "value"}`, result)
}

func TestCleanJSONBlock_JSONFence(t *testing.T) {
	input := "```json\n{\"key\": \"value\"}\n```"
	result := CleanJSONBlock(input)
	assert.Equal(t, `{"key": "value"}`, result)
}

func TestCleanJSONBlock_GenericFence(t *testing.T) {
	input := "```\n{\"key\": \"value\"}\n```"
	result := CleanJSONBlock(input)
	assert.Equal(t, `{"key": "value"}`, result)
}

func TestCleanJSONBlock_LeadingWhitespace(t *testing.T) {
	input := "  \n```json\n{\"a\": 1}\n```  "
	result := CleanJSONBlock(input)
	assert.Equal(t, `{"a": 1}`, result)
}

func TestCleanJSONBlock_FenceWithLanguageID(t *testing.T) {
	input := "```javascript\n{\"a\": 1}\n```"
	result := CleanJSONBlock(input)
	assert.Equal(t, `{"a": 1}`, result)
}

func TestExtractJSONObject_Surrounded(t *testing.T) {
	input := "Here is the result:\n{\"title\": \"Engineer\"}\nHope this helps!"
	result := ExtractJSONObject(input)
	assert.Equal(t, `{"title": "Engineer"}`, result)
}

func TestExtractJSONObject_NoBraces(t *testing.T) {
	input := "no json here"
	result := ExtractJSONObject(input)
	assert.Equal(t, input, result)
}

func TestExtractJSONObject_Nested(t *testing.T) {
	input := `{"outer": {"inner": true}}`
	result := ExtractJSONObject(input)
	assert.Equal(t, input, result)
}

func TestDefaultConfig_HasBothTiers(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, ProviderGemini, cfg.Provider)
	assert.NotEmpty(t, cfg.GetModel(TierFast))
	assert.NotEmpty(t, cfg.GetModel(TierPrecise))
	assert.Equal(t, DefaultEmbeddingModel, cfg.EmbeddingModel)
}

func TestConfig_WithModel(t *testing.T) {
	cfg := DefaultConfig().WithModel(TierFast, "gemini-custom")
	assert.Equal(t, "gemini-custom", cfg.GetModel(TierFast))
	// Original config untouched
	assert.Equal(t, "gemini-2.0-flash", DefaultConfig().GetModel(TierFast))
}
