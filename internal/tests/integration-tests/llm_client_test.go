package integration_tests

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonder-codes/echo-repo/internal/llm/client"
	"github.com/wonder-codes/echo-repo/internal/models"
	"github.com/wonder-codes/echo-repo/internal/utils"
)

// These tests call the real OpenAI API and are skipped without a key.
func openAIModel(t *testing.T, temperature float32) *client.LLMClient {
	t.Helper()
	require.NoError(t, utils.LoadEnv())
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		t.Skip("OPENAI_API_KEY not set")
	}
	c, err := client.NewOpenAIClient(context.Background(), key, client.ModelOptions{
		Model:       "gpt-4o-mini",
		Temperature: client.Float32(temperature),
	})
	require.NoError(t, err)
	return c
}

func TestReadmeGenerator_Live(t *testing.T) {
	c := openAIModel(t, 0.7)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	gen, err := client.NewReadmeGenerator(ctx, c.ChatModel)
	require.NoError(t, err)

	readme, err := gen.GenerateReadme(ctx, "function add(a,b){return a+b}")
	require.NoError(t, err)
	assert.Contains(t, readme, "#")
	assert.Contains(t, readme, "Usage")
}

func TestCodeChat_Live(t *testing.T) {
	c := openAIModel(t, 0)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	chat, err := client.NewCodeChat(ctx, c.ChatModel)
	require.NoError(t, err)

	reply, err := chat.Reply(ctx, "What does this function return for 2 and 3? Answer with the number only.",
		"function add(a,b){return a+b}",
		[]models.ChatMessage{{Role: models.RoleUser, Content: "Hi"}, {Role: models.RoleAssistant, Content: "Hello! Ask me about the code."}})
	require.NoError(t, err)
	assert.Contains(t, reply, "5")
}
