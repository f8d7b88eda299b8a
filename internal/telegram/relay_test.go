package telegram_test

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/go-telegram/bot/models"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/shared-expenses/internal/expense"
	"github.com/frahmantamala/shared-expenses/internal/telegram"
)

type failingRecorder struct{}

func (failingRecorder) RecordMessage(context.Context, string) (*expense.Expense, bool, error) {
	return nil, true, errors.New("store unavailable")
}

var _ = Describe("Relay", func() {
	var (
		relay  *telegram.Relay
		client *fakeClient
		store  *expense.MemoryStore
		ctx    context.Context
		logger *slog.Logger
	)

	textUpdate := func(id int64, chatID int64, text string) *models.Update {
		return &models.Update{
			ID: id,
			Message: &models.Message{
				ID:   1,
				Chat: models.Chat{ID: chatID},
				Text: text,
			},
		}
	}

	BeforeEach(func() {
		ctx = context.Background()
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		store = expense.NewMemoryStore()
		client = &fakeClient{}
		relay = telegram.NewRelay(expense.NewService(store, logger), client, telegram.NewAuditLog(telegram.AuditCapacity), logger)
	})

	Context("when the message describes an expense", func() {
		It("should store it, audit it and confirm in the chat", func() {
			stored, err := relay.HandleUpdate(ctx, textUpdate(10, 42, "95 mercado -> compartilhado"), "tok")

			Expect(err).NotTo(HaveOccurred())
			Expect(stored).To(BeTrue())
			Expect(store.Len()).To(Equal(1))

			events := relay.Audit().Snapshot()
			Expect(events).To(HaveLen(1))
			Expect(events[0].Stored).To(BeTrue())
			Expect(events[0].Outcome).To(Equal(telegram.OutcomeStored))
			Expect(events[0].UpdateID).To(Equal(int64(10)))
			Expect(*events[0].ChatID).To(Equal(int64(42)))
			Expect(events[0].Text).To(Equal("95 mercado -> compartilhado"))

			sent := client.messages()
			Expect(sent).To(HaveLen(1))
			Expect(sent[0].Token).To(Equal("tok"))
			Expect(sent[0].ChatID).To(Equal(int64(42)))
			Expect(sent[0].Text).To(Equal("Gasto registrado: R$ 95,00 - mercado (compartilhado)"))
		})

		It("should read edited messages", func() {
			update := &models.Update{ID: 11, EditedMessage: &models.Message{Chat: models.Chat{ID: 7}, Text: "40 transporte -> individual"}}

			stored, err := relay.HandleUpdate(ctx, update, "tok")

			Expect(err).NotTo(HaveOccurred())
			Expect(stored).To(BeTrue())
			list, _ := store.List(ctx)
			Expect(list[0].Type).To(Equal(expense.TypeIndividual))
		})

		It("should read channel post captions", func() {
			update := &models.Update{ID: 12, ChannelPost: &models.Message{Chat: models.Chat{ID: -100}, Caption: "12,50 farmacia"}}

			stored, err := relay.HandleUpdate(ctx, update, "")

			Expect(err).NotTo(HaveOccurred())
			Expect(stored).To(BeTrue())
			list, _ := store.List(ctx)
			Expect(list[0].Amount).To(Equal(12.5))
		})

		It("should keep the expense when the confirmation fails", func() {
			client.sendErr = errors.New("network down")

			stored, err := relay.HandleUpdate(ctx, textUpdate(13, 42, "10 pao"), "tok")

			Expect(err).NotTo(HaveOccurred())
			Expect(stored).To(BeTrue())
			Expect(store.Len()).To(Equal(1))
		})

		It("should not reply without a token", func() {
			_, err := relay.HandleUpdate(ctx, textUpdate(14, 42, "10 pao"), "")

			Expect(err).NotTo(HaveOccurred())
			Expect(client.messages()).To(BeEmpty())
		})
	})

	Context("when the message is not an expense", func() {
		It("should answer with the format hint", func() {
			stored, err := relay.HandleUpdate(ctx, textUpdate(20, 42, "abc sem numero"), "tok")

			Expect(err).NotTo(HaveOccurred())
			Expect(stored).To(BeFalse())
			Expect(store.Len()).To(BeZero())
			Expect(relay.Audit().Snapshot()[0].Outcome).To(Equal(telegram.OutcomeNoMatch))

			sent := client.messages()
			Expect(sent).To(HaveLen(1))
			Expect(sent[0].Text).To(Equal(telegram.FormatHint))
		})

		It("should answer /start with the usage hint", func() {
			stored, err := relay.HandleUpdate(ctx, textUpdate(21, 42, "/start"), "tok")

			Expect(err).NotTo(HaveOccurred())
			Expect(stored).To(BeFalse())
			Expect(relay.Audit().Snapshot()[0].Outcome).To(Equal(telegram.OutcomeCommand))
			Expect(client.messages()[0].Text).To(Equal(telegram.UsageHint))
		})

		It("should ignore other commands", func() {
			_, err := relay.HandleUpdate(ctx, textUpdate(22, 42, "/gasto 10"), "tok")

			Expect(err).NotTo(HaveOccurred())
			Expect(store.Len()).To(BeZero())
			Expect(client.messages()).To(BeEmpty())
		})

		It("should audit an update without a message", func() {
			stored, err := relay.HandleUpdate(ctx, &models.Update{ID: 23}, "tok")

			Expect(err).NotTo(HaveOccurred())
			Expect(stored).To(BeFalse())

			events := relay.Audit().Snapshot()
			Expect(events[0].Outcome).To(Equal(telegram.OutcomeEmpty))
			Expect(events[0].ChatID).To(BeNil())
			Expect(client.messages()).To(BeEmpty())
		})
	})

	Context("when the recorder fails", func() {
		It("should return the error and audit it", func() {
			relay = telegram.NewRelay(failingRecorder{}, client, nil, logger)

			stored, err := relay.HandleUpdate(ctx, textUpdate(30, 42, "10 pao"), "tok")

			Expect(err).To(HaveOccurred())
			Expect(stored).To(BeFalse())
			Expect(relay.Audit().Snapshot()[0].Outcome).To(Equal(telegram.OutcomeError))
		})
	})
})

var _ = Describe("FormatBRL", func() {
	It("should use a comma and two decimals", func() {
		Expect(telegram.FormatBRL(10.5)).To(Equal("R$ 10,50"))
		Expect(telegram.FormatBRL(1234)).To(Equal("R$ 1234,00"))
	})
})
