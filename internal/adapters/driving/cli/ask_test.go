package cli

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tfask/internal/core/domain"
)

func testHits() []domain.SearchHit {
	return []domain.SearchHit{
		{
			Chunk: domain.Chunk{URI: "network/vpc.tf", Position: 0, Content: `resource "aws_vpc" "main" {}`},
			Score: 0.91,
		},
		{
			Chunk: domain.Chunk{URI: "network/subnets.tf", Position: 2, Content: `resource "aws_subnet" "a" {}`},
			Score: 0.5,
		},
	}
}

func TestAskCmd_Flags(t *testing.T) {
	assert.NotNil(t, askCmd.Flags().Lookup("sources"))
	assert.NotNil(t, askCmd.Flags().Lookup("json"))
}

func TestAskCmd_JoinsWords(t *testing.T) {
	env := setupTestServices(t, nil)

	out, err := execute(t, "", "ask", "which", "vpc", "is", "used?")
	require.NoError(t, err)

	assert.True(t, env.pipeline.started)
	assert.Equal(t, []string{"which vpc is used?"}, env.pipeline.asked)
	assert.Equal(t, "answer to which vpc is used?\n", out)
	assert.Equal(t, 1, env.closed)
}

func TestAskCmd_RequiresQuestion(t *testing.T) {
	env := setupTestServices(t, nil)

	_, err := execute(t, "", "ask")
	require.Error(t, err)
	assert.Equal(t, 0, env.opened)
}

func TestAskCmd_Sources(t *testing.T) {
	env := setupTestServices(t, nil)
	env.pipeline.sources = testHits()

	out, err := execute(t, "", "ask", "--sources", "vpc?")
	require.NoError(t, err)

	assert.Contains(t, out, "Sources:")
	assert.Contains(t, out, "  [1] network/vpc.tf#0 (0.91)")
	assert.Contains(t, out, "  [2] network/subnets.tf#2 (0.50)")
}

func TestAskCmd_JSON(t *testing.T) {
	env := setupTestServices(t, nil)
	env.pipeline.sources = testHits()

	out, err := execute(t, "", "ask", "--json", "vpc?")
	require.NoError(t, err)

	var got answerJSON
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "vpc?", got.Question)
	assert.Equal(t, "answer to vpc?", got.Answer)
	require.Len(t, got.Sources, 2)
	assert.Equal(t, "network/subnets.tf", got.Sources[1].URI)
	assert.Equal(t, 2, got.Sources[1].Position)
	assert.InDelta(t, 0.91, got.Sources[0].Score, 1e-9)
}

func TestAskCmd_JSONWithoutSources(t *testing.T) {
	setupTestServices(t, nil)

	out, err := execute(t, "", "ask", "--json", "vpc?")
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, `"sources": []`))
}

func TestAskCmd_Failure(t *testing.T) {
	env := setupTestServices(t, nil)
	env.pipeline.askErr = errors.New("model went away")

	_, err := execute(t, "", "ask", "vpc?")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ask failed: model went away")
	assert.Equal(t, 1, env.closed)
}
