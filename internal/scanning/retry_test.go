package scanning

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// scriptedScanner returns one canned outcome per call, in order
type scriptedScanner struct {
	outcomes []scanOutcome
	calls    int
}

type scanOutcome struct {
	text string
	err  error
}

func (s *scriptedScanner) Scan(ctx context.Context, image []byte, contentType string) (string, error) {
	outcome := s.outcomes[s.calls]
	s.calls++
	return outcome.text, outcome.err
}

func (s *scriptedScanner) Close() error { return nil }

// recordingSleeper records requested delays instead of sleeping
type recordingSleeper struct {
	delays []time.Duration
}

func (r *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return nil
}

var _ = Describe("RetryScanner", func() {
	var (
		inner   *scriptedScanner
		sleeper *recordingSleeper
		scanner *RetryScanner
		text    string
		err     error
	)

	BeforeEach(func() {
		sleeper = &recordingSleeper{}
	})

	JustBeforeEach(func() {
		scanner = NewRetryScannerWithSleeper(inner, sleeper)
		text, err = scanner.Scan(context.Background(), []byte("img"), "image/jpeg")
	})

	When("the first attempt succeeds", func() {
		BeforeEach(func() {
			inner = &scriptedScanner{outcomes: []scanOutcome{{text: "ok"}}}
		})

		It("returns the response", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal("ok"))
		})

		It("does not sleep", func() {
			Expect(sleeper.delays).To(BeEmpty())
		})
	})

	When("two attempts fail and the third succeeds", func() {
		BeforeEach(func() {
			inner = &scriptedScanner{outcomes: []scanOutcome{
				{err: errors.New("boom")},
				{err: errors.New("boom")},
				{text: "ok"},
			}}
		})

		It("ultimately succeeds", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal("ok"))
		})

		It("does not try a fourth time", func() {
			Expect(inner.calls).To(Equal(3))
		})

		It("sleeps the fixed delay between attempts", func() {
			Expect(sleeper.delays).To(Equal([]time.Duration{retryDelay, retryDelay}))
		})
	})

	When("every attempt fails", func() {
		BeforeEach(func() {
			inner = &scriptedScanner{outcomes: []scanOutcome{
				{err: errors.New("boom")},
				{err: errors.New("boom")},
				{err: errors.New("boom")},
			}}
		})

		It("fails permanently after the attempt cap", func() {
			Expect(err).To(HaveOccurred())
			Expect(inner.calls).To(Equal(maxAttempts))
		})

		It("wraps the final cause", func() {
			Expect(err.Error()).To(ContainSubstring("boom"))
		})
	})

	When("the failure is rate limiting with a server hint", func() {
		BeforeEach(func() {
			inner = &scriptedScanner{outcomes: []scanOutcome{
				{err: &RateLimitError{RetryAfter: 7 * time.Second}},
				{text: "ok"},
			}}
		})

		It("sleeps the hinted duration", func() {
			Expect(sleeper.delays).To(Equal([]time.Duration{7 * time.Second}))
		})

		It("succeeds on the retry", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal("ok"))
		})
	})

	When("the failure is rate limiting without a hint", func() {
		BeforeEach(func() {
			inner = &scriptedScanner{outcomes: []scanOutcome{
				{err: &RateLimitError{}},
				{text: "ok"},
			}}
		})

		It("sleeps the extended fallback", func() {
			Expect(sleeper.delays).To(Equal([]time.Duration{rateLimitFallback}))
		})
	})

	When("the final attempt is rate limited", func() {
		BeforeEach(func() {
			inner = &scriptedScanner{outcomes: []scanOutcome{
				{err: &RateLimitError{}},
				{err: &RateLimitError{}},
				{err: &RateLimitError{}},
			}}
		})

		It("does not sleep after the last attempt", func() {
			Expect(sleeper.delays).To(HaveLen(maxAttempts - 1))
		})
	})
})

var _ = Describe("parseRetryAfter", func() {
	DescribeTable("reads delta-seconds values",
		func(header string, expected time.Duration) {
			Expect(parseRetryAfter(header)).To(Equal(expected))
		},
		Entry("empty header", "", time.Duration(0)),
		Entry("plain seconds", "12", 12*time.Second),
		Entry("padded seconds", " 3 ", 3*time.Second),
		Entry("http date form", "Wed, 21 Oct 2026 07:28:00 GMT", time.Duration(0)),
		Entry("negative value", "-1", time.Duration(0)),
	)
})
