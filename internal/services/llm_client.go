package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

// LLMState tracks whether the local model is ready to serve. The state is
// owned by the client and advanced explicitly; callers never observe a
// hidden warm-up flag.
type LLMState int

const (
	LLMCold LLMState = iota
	LLMWarming
	LLMWarm
)

func (s LLMState) String() string {
	switch s {
	case LLMCold:
		return "cold"
	case LLMWarming:
		return "warming"
	case LLMWarm:
		return "warm"
	}
	return fmt.Sprintf("LLMState(%d)", int(s))
}

// ErrLLMWarmingUp is returned while the local model is still loading.
// Callers should answer with a canned reply instead of blocking the request.
var ErrLLMWarmingUp = errors.New("language model is warming up")

// LLMClient wraps a locally hosted Ollama model behind a cold/warming/warm
// state machine. The first Generate call kicks off a background warm-up
// generation; until it completes, calls fail fast with ErrLLMWarmingUp.
type LLMClient struct {
	mu    sync.Mutex
	state LLMState
	llm   *ollama.LLM
	model string
}

func NewLLMClient() (*LLMClient, error) {
	endpoint := os.Getenv("OLLAMA_URL")
	if endpoint == "" {
		endpoint = "http://localhost:11434"
	}
	model := os.Getenv("OLLAMA_MODEL")
	if model == "" {
		model = "llama3"
	}

	llm, err := ollama.New(
		ollama.WithServerURL(endpoint),
		ollama.WithModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ollama client: %w", err)
	}

	return &LLMClient{
		state: LLMCold,
		llm:   llm,
		model: model,
	}, nil
}

// State returns the current warm-up state
func (c *LLMClient) State() LLMState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Generate produces a completion for the prompt. While the model is cold or
// warming it returns ErrLLMWarmingUp instead of blocking the caller on a
// multi-second model load.
func (c *LLMClient) Generate(ctx context.Context, prompt string) (string, error) {
	c.mu.Lock()
	switch c.state {
	case LLMCold:
		c.state = LLMWarming
		c.mu.Unlock()
		go c.warmUp()
		return "", ErrLLMWarmingUp
	case LLMWarming:
		c.mu.Unlock()
		return "", ErrLLMWarmingUp
	}
	c.mu.Unlock()

	return llms.GenerateFromSinglePrompt(ctx, c.llm, prompt, llms.WithTemperature(0.2))
}

// warmUp runs a throwaway generation to force the model into memory
func (c *LLMClient) warmUp() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	_, err := llms.GenerateFromSinglePrompt(ctx, c.llm, "hello")

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		log.Printf("Warning: LLM warm-up failed for model %s: %v", c.model, err)
		c.state = LLMCold
		return
	}
	log.Printf("LLM model %s warmed up", c.model)
	c.state = LLMWarm
}
