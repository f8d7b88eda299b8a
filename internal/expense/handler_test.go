package expense_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/shared-expenses/internal/expense"
)

var _ = Describe("ExpenseHandler", func() {
	var (
		handler *expense.Handler
		store   *expense.MemoryStore
	)

	BeforeEach(func() {
		store = expense.NewMemoryStore()
		handler = expense.NewHandler(expense.NewService(store, nil))
	})

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/expenses", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		handler.CreateExpense(rec, req)
		return rec
	}

	Describe("CreateExpense", func() {
		It("should record a comma formatted amount", func() {
			rec := post(`{"description":"Aluguel","amount":"10,50"}`)

			Expect(rec.Code).To(Equal(http.StatusOK))
			var resp expense.CreateExpenseResponse
			Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Message).To(Equal("Expense recorded."))
			Expect(resp.Expense.Amount).To(Equal(10.5))
			Expect(resp.Expense.Source).To(Equal(expense.SourceManual))
			Expect(store.Len()).To(Equal(1))
		})

		It("should reject a missing description", func() {
			rec := post(`{"amount":12}`)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(rec.Body.String()).To(ContainSubstring("description and amount are required"))
			Expect(store.Len()).To(BeZero())
		})

		It("should reject a zero amount", func() {
			rec := post(`{"description":"x","amount":0}`)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("should reject a malformed body", func() {
			rec := post(`{not json`)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("GetExpenses", func() {
		It("should list expenses head-first", func() {
			Expect(store.Append(context.Background(), &expense.Expense{ID: "A"})).To(Succeed())
			Expect(store.Append(context.Background(), &expense.Expense{ID: "B"})).To(Succeed())

			rec := httptest.NewRecorder()
			handler.GetExpenses(rec, httptest.NewRequest(http.MethodGet, "/api/expenses", nil))

			Expect(rec.Code).To(Equal(http.StatusOK))
			var resp expense.ListExpensesResponse
			Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Expenses).To(HaveLen(2))
			Expect(resp.Expenses[0].ID).To(Equal("B"))
		})

		It("should return an empty array rather than null", func() {
			rec := httptest.NewRecorder()
			handler.GetExpenses(rec, httptest.NewRequest(http.MethodGet, "/api/expenses", nil))

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring(`"expenses":[]`))
		})
	})
})
