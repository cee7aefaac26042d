package scanning

import (
	"context"
	"errors"
	"net/http"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
)

var _ = Describe("OpenAI", func() {
	var (
		server  *ghttp.Server
		scanner *OpenAI
		text    string
		err     error
	)

	BeforeEach(func() {
		server = ghttp.NewServer()
		scanner = &OpenAI{
			endpoint: server.URL() + "/v1/chat/completions",
			apiKey:   "test-key",
			model:    "gpt-4o-2024-11-20",
			client:   &http.Client{Timeout: 5 * time.Second},
		}
	})

	AfterEach(func() {
		server.Close()
	})

	JustBeforeEach(func() {
		text, err = scanner.Scan(context.Background(), pngFixture(), "image/png")
	})

	When("the API answers normally", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest("POST", "/v1/chat/completions"),
				ghttp.VerifyHeaderKV("Authorization", "Bearer test-key"),
				ghttp.VerifyContentType("application/json"),
				ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{
					"choices": []map[string]any{
						{"message": map[string]any{"content": "```json\n{}\n```"}},
					},
				}),
			))
		})

		It("returns the raw response text", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal("```json\n{}\n```"))
		})
	})

	When("the API rate limits with a Retry-After hint", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusTooManyRequests, "slow down",
				http.Header{"Retry-After": []string{"9"}}))
		})

		It("returns a RateLimitError carrying the hint", func() {
			var rle *RateLimitError
			Expect(errors.As(err, &rle)).To(BeTrue())
			Expect(rle.RetryAfter).To(Equal(9 * time.Second))
		})
	})

	When("the API rate limits without a hint", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusTooManyRequests, ""))
		})

		It("returns a RateLimitError with no hint", func() {
			var rle *RateLimitError
			Expect(errors.As(err, &rle)).To(BeTrue())
			Expect(rle.RetryAfter).To(BeZero())
		})
	})

	When("the API fails with a server error", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusInternalServerError, "boom"))
		})

		It("returns an ordinary error", func() {
			Expect(err).To(HaveOccurred())
			var rle *RateLimitError
			Expect(errors.As(err, &rle)).To(BeFalse())
			Expect(err.Error()).To(ContainSubstring("status 500"))
		})
	})

	When("the API returns no choices", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{
				"choices": []any{},
			}))
		})

		It("returns an error", func() {
			Expect(err).To(MatchError(ContainSubstring("no response")))
		})
	})
})
