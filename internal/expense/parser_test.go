package expense_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/shared-expenses/internal/expense"
)

var _ = Describe("ParseMessage", func() {
	Context("when the message describes an expense", func() {
		It("should parse a shared expense", func() {
			result := expense.ParseMessage("95 mercado -> compartilhado")

			Expect(result.Matched).To(BeTrue())
			Expect(result.Draft.Amount).To(Equal(95.0))
			Expect(result.Draft.Description).To(Equal("mercado"))
			Expect(result.Draft.Category).To(Equal(expense.CategoryBot))
			Expect(result.Draft.Type).To(Equal(expense.TypeShared))
		})

		It("should parse an individual expense", func() {
			result := expense.ParseMessage("40 transporte -> individual")

			Expect(result.Matched).To(BeTrue())
			Expect(result.Draft.Amount).To(Equal(40.0))
			Expect(result.Draft.Description).To(Equal("transporte"))
			Expect(result.Draft.Type).To(Equal(expense.TypeIndividual))
		})

		It("should default to shared without a type clause", func() {
			result := expense.ParseMessage("12,50 farmacia")

			Expect(result.Matched).To(BeTrue())
			Expect(result.Draft.Amount).To(Equal(12.5))
			Expect(result.Draft.Description).To(Equal("farmacia"))
			Expect(result.Draft.Type).To(Equal(expense.TypeShared))
		})

		It("should find the amount after the description", func() {
			result := expense.ParseMessage("pizza 20 -> pessoal")

			Expect(result.Matched).To(BeTrue())
			Expect(result.Draft.Amount).To(Equal(20.0))
			Expect(result.Draft.Description).To(Equal("pizza"))
			Expect(result.Draft.Type).To(Equal(expense.TypeIndividual))
		})

		It("should use only the first numeric run", func() {
			result := expense.ParseMessage("10 pizza 20")

			Expect(result.Matched).To(BeTrue())
			Expect(result.Draft.Amount).To(Equal(10.0))
			Expect(result.Draft.Description).To(Equal("pizza 20"))
		})

		It("should remove the matched run even when it repeats", func() {
			result := expense.ParseMessage("uber 15 15")

			Expect(result.Matched).To(BeTrue())
			Expect(result.Draft.Amount).To(Equal(15.0))
			Expect(result.Draft.Description).To(Equal("uber  15"))
		})

		It("should leave a currency symbol in the description", func() {
			result := expense.ParseMessage("R$ 30 uber")

			Expect(result.Matched).To(BeTrue())
			Expect(result.Draft.Amount).To(Equal(30.0))
			Expect(result.Draft.Description).To(HavePrefix("R$"))
			Expect(result.Draft.Description).To(HaveSuffix("uber"))
		})

		It("should fall back to the default description", func() {
			result := expense.ParseMessage("50")

			Expect(result.Matched).To(BeTrue())
			Expect(result.Draft.Description).To(Equal(expense.DefaultBotDescription))
		})

		It("should complete the draft into a telegram record", func() {
			result := expense.ParseMessage("95 mercado")
			now := time.Date(2026, 3, 14, 22, 0, 0, 0, time.UTC)

			e := result.Draft.Expense("id-1", now)

			Expect(e.ID).To(Equal("id-1"))
			Expect(e.Source).To(Equal(expense.SourceTelegram))
			Expect(e.Date).To(Equal("2026-03-14"))
			Expect(e.Owner).To(BeEmpty())
		})
	})

	Context("when the message is not an expense", func() {
		DescribeTable("it should not match",
			func(text string) {
				Expect(expense.ParseMessage(text)).To(Equal(expense.NoMatch))
			},
			Entry("empty", ""),
			Entry("blank", "   "),
			Entry("no number", "abc"),
			Entry("zero amount", "0 gratis"),
			Entry("command", "/start"),
			Entry("command with amount", "/gasto 10 mercado"),
			Entry("amount only in the type clause", "mercado -> 30"),
		)
	})
})

var _ = Describe("ClassifyType", func() {
	DescribeTable("hints",
		func(hint string, want expense.Type) {
			Expect(expense.ClassifyType(hint)).To(Equal(want))
		},
		Entry("individual", "individual", expense.TypeIndividual),
		Entry("pessoal", "Pessoal", expense.TypeIndividual),
		Entry("solo", "SOLO", expense.TypeIndividual),
		Entry("compartilhado", "compartilhado", expense.TypeShared),
		Entry("shared", "shared", expense.TypeShared),
		Entry("unknown", "whatever", expense.TypeShared),
		Entry("empty", "", expense.TypeShared),
	)
})

var _ = Describe("IsCommand", func() {
	It("should detect slash commands", func() {
		Expect(expense.IsCommand(" /help")).To(BeTrue())
		Expect(expense.IsCommand("95 mercado")).To(BeFalse())
	})
})
