package llm_test

import (
	"context"
	"net/http"

	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	openaioption "github.com/openai/openai-go/option"

	"curator/config"
	"curator/llm"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const openAICompletion = `{
  "id": "chatcmpl-123",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gpt-4o",
  "choices": [{"index": 0, "message": {"role": "assistant", "content": "Yes\n\nFaithful and concise."}, "finish_reason": "stop"}],
  "usage": {"prompt_tokens": 120, "completion_tokens": 8, "total_tokens": 128, "prompt_tokens_details": {"cached_tokens": 64}}
}`

const anthropicMessage = `{
  "id": "msg_01",
  "type": "message",
  "role": "assistant",
  "model": "claude-3-5-haiku-20241022",
  "content": [{"type": "text", "text": "No"}, {"type": "text", "text": "\n\nHallucinated result."}],
  "stop_reason": "end_turn",
  "usage": {"input_tokens": 40, "output_tokens": 6, "cache_read_input_tokens": 12}
}`

func judgeRequest(model string, temperature float64) *llm.ChatRequest {
	return &llm.ChatRequest{
		Model:       model,
		Temperature: temperature,
		Messages: []llm.Message{
			llm.NewTextMessage(llm.RoleSystem, "You are an expert academic reviewer."),
			llm.NewTextMessage(llm.RoleUser, "[BEGIN DATA] ... [END DATA]"),
		},
	}
}

var _ = Describe("OpenAIProvider", func() {
	It("sends the chat request and maps the first choice", func() {
		api, srv := newFakeAPI(http.StatusOK, openAICompletion)
		p := llm.NewOpenAIProvider("sk-test", openaioption.WithBaseURL(srv.URL+"/"), openaioption.WithMaxRetries(0))

		req := judgeRequest("gpt-4o", 1.0)
		req.MaxTokens = 256
		resp, err := p.Chat(context.Background(), req)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.ID).To(Equal("chatcmpl-123"))
		Expect(resp.Content).To(HavePrefix("Yes"))
		Expect(resp.FinishReason).To(Equal("stop"))
		Expect(resp.Usage.InputTokens).To(Equal(120))
		Expect(resp.Usage.OutputTokens).To(Equal(8))
		Expect(resp.Usage.CachedTokens).To(Equal(64))

		Expect(api.lastPath()).To(HaveSuffix("/chat/completions"))
		body := api.lastBody()
		Expect(body["model"]).To(Equal("gpt-4o"))
		Expect(body["temperature"]).To(BeNumerically("==", 1.0))
		Expect(body["max_completion_tokens"]).To(BeNumerically("==", 256))
		Expect(body["messages"]).To(HaveLen(2))
	})

	It("omits temperature when it is zero", func() {
		api, srv := newFakeAPI(http.StatusOK, openAICompletion)
		p := llm.NewOpenAIProvider("sk-test", openaioption.WithBaseURL(srv.URL+"/"), openaioption.WithMaxRetries(0))

		_, err := p.Chat(context.Background(), judgeRequest("gpt-4o", 0))
		Expect(err).NotTo(HaveOccurred())
		Expect(api.lastBody()).NotTo(HaveKey("temperature"))
	})

	It("returns ErrEmptyResponse when there are no choices", func() {
		_, srv := newFakeAPI(http.StatusOK, `{"id": "x", "object": "chat.completion", "choices": []}`)
		p := llm.NewOpenAIProvider("sk-test", openaioption.WithBaseURL(srv.URL+"/"), openaioption.WithMaxRetries(0))

		_, err := p.Chat(context.Background(), judgeRequest("gpt-4o", 1))
		Expect(err).To(MatchError(llm.ErrEmptyResponse))
	})

	It("surfaces API errors", func() {
		_, srv := newFakeAPI(http.StatusUnauthorized, `{"error": {"message": "bad key", "type": "invalid_request_error"}}`)
		p := llm.NewOpenAIProvider("sk-test", openaioption.WithBaseURL(srv.URL+"/"), openaioption.WithMaxRetries(0))

		_, err := p.Chat(context.Background(), judgeRequest("gpt-4o", 1))
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("AnthropicProvider", func() {
	It("moves system messages to the system field and joins text blocks", func() {
		api, srv := newFakeAPI(http.StatusOK, anthropicMessage)
		p := llm.NewAnthropicProvider("sk-ant", anthropicoption.WithBaseURL(srv.URL+"/"), anthropicoption.WithMaxRetries(0))

		resp, err := p.Chat(context.Background(), judgeRequest("claude-3-5-haiku-20241022", 0.7))
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Content).To(Equal("No\n\nHallucinated result."))
		Expect(resp.FinishReason).To(Equal("end_turn"))
		Expect(resp.Usage.CacheReadInputTokens).To(Equal(12))

		Expect(api.lastPath()).To(HaveSuffix("/v1/messages"))
		body := api.lastBody()
		Expect(body["system"]).To(HaveLen(1))
		Expect(body["messages"]).To(HaveLen(1))
		Expect(body["max_tokens"]).To(BeNumerically("==", 4096))
		Expect(body["temperature"]).To(BeNumerically("~", 0.7, 1e-9))
	})

	It("clamps temperature to 1", func() {
		api, srv := newFakeAPI(http.StatusOK, anthropicMessage)
		p := llm.NewAnthropicProvider("sk-ant", anthropicoption.WithBaseURL(srv.URL+"/"), anthropicoption.WithMaxRetries(0))

		_, err := p.Chat(context.Background(), judgeRequest("claude-3-5-haiku-20241022", 1.6))
		Expect(err).NotTo(HaveOccurred())
		Expect(api.lastBody()["temperature"]).To(BeNumerically("==", 1))
	})

	It("returns ErrEmptyResponse without text blocks", func() {
		_, srv := newFakeAPI(http.StatusOK, `{"id": "msg_02", "type": "message", "role": "assistant", "content": [], "stop_reason": "end_turn", "usage": {"input_tokens": 1, "output_tokens": 0}}`)
		p := llm.NewAnthropicProvider("sk-ant", anthropicoption.WithBaseURL(srv.URL+"/"), anthropicoption.WithMaxRetries(0))

		_, err := p.Chat(context.Background(), judgeRequest("claude-3-5-haiku-20241022", 1))
		Expect(err).To(MatchError(llm.ErrEmptyResponse))
	})
})

var _ = Describe("NewProvider", func() {
	ctx := context.Background()

	It("builds a provider per configured provider", func() {
		for _, p := range []config.Provider{config.ProviderOpenAI, config.ProviderAnthropic} {
			prov, err := llm.NewProvider(ctx, &config.Model{Name: string(p), Provider: p, APIKey: "k"})
			Expect(err).NotTo(HaveOccurred())
			Expect(prov).NotTo(BeNil())
		}
	})

	It("rejects an empty api key", func() {
		_, err := llm.NewProvider(ctx, &config.Model{Name: "openai", Provider: config.ProviderOpenAI})
		Expect(err).To(MatchError("model 'openai': api_key is empty"))
	})

	It("rejects an unknown provider", func() {
		_, err := llm.NewProvider(ctx, &config.Model{Name: "x", Provider: "llama", APIKey: "k"})
		Expect(err).To(MatchError(ContainSubstring("unsupported provider 'llama'")))
	})
})
