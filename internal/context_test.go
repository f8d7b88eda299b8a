package internal_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/shared-expenses/internal"
)

var _ = Describe("Context helpers", func() {
	It("should carry the verified subject", func() {
		ctx := internal.ContextWithSubject(context.Background(), "user-1")
		Expect(internal.SubjectFromContext(ctx)).To(Equal("user-1"))
		Expect(internal.SubjectFromContext(context.Background())).To(BeEmpty())
	})

	It("should use the given timeout", func() {
		ctx, cancel := internal.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		deadline, ok := ctx.Deadline()
		Expect(ok).To(BeTrue())
		Expect(time.Until(deadline)).To(BeNumerically(">", 30*time.Second))
	})

	It("should default to five seconds for a non positive timeout", func() {
		ctx, cancel := internal.WithTimeout(context.Background(), 0)
		defer cancel()

		deadline, ok := ctx.Deadline()
		Expect(ok).To(BeTrue())
		Expect(time.Until(deadline)).To(BeNumerically("~", 5*time.Second, time.Second))
	})
})
