package telegram_test

import (
	"fmt"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/shared-expenses/internal/telegram"
)

var _ = Describe("AuditLog", func() {
	var audit *telegram.AuditLog

	BeforeEach(func() {
		audit = telegram.NewAuditLog(telegram.AuditCapacity)
	})

	It("should start empty", func() {
		Expect(audit.Snapshot()).To(BeEmpty())
		Expect(audit.Len()).To(BeZero())
	})

	It("should return events newest first", func() {
		audit.Record(telegram.WebhookEvent{Text: "first"})
		audit.Record(telegram.WebhookEvent{Text: "second"})

		events := audit.Snapshot()
		Expect(events).To(HaveLen(2))
		Expect(events[0].Text).To(Equal("second"))
		Expect(events[1].Text).To(Equal("first"))
	})

	It("should keep only the 20 most recent events", func() {
		for i := 1; i <= 25; i++ {
			audit.Record(telegram.WebhookEvent{Text: fmt.Sprint(i)})
		}

		events := audit.Snapshot()
		Expect(events).To(HaveLen(telegram.AuditCapacity))
		Expect(events[0].Text).To(Equal("25"))
		Expect(events[19].Text).To(Equal("6"))
	})

	It("should be exactly full at capacity", func() {
		for i := 1; i <= telegram.AuditCapacity; i++ {
			audit.Record(telegram.WebhookEvent{Text: fmt.Sprint(i)})
		}

		events := audit.Snapshot()
		Expect(events).To(HaveLen(telegram.AuditCapacity))
		Expect(events[0].Text).To(Equal("20"))
		Expect(events[19].Text).To(Equal("1"))
	})

	It("should default a non-positive capacity", func() {
		small := telegram.NewAuditLog(0)
		for i := 0; i < 30; i++ {
			small.Record(telegram.WebhookEvent{})
		}
		Expect(small.Len()).To(Equal(telegram.AuditCapacity))
	})

	It("should accept concurrent writers", func() {
		var wg sync.WaitGroup
		for i := 0; i < 100; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				audit.Record(telegram.WebhookEvent{Text: "x"})
			}()
		}
		wg.Wait()
		Expect(audit.Len()).To(Equal(telegram.AuditCapacity))
	})
})
