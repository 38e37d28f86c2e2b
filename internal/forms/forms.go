// Package forms decodes and validates the create and login forms before
// anything is sent to the service.
package forms

import (
	"net/url"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"harcama/internal/core"
)

const inputDateLayout = "2006-01-02"

// Messages shown next to invalid fields.
const (
	MsgTitleRequired       = "Başlık gereklidir"
	MsgTitleTooLong        = "Başlık en fazla 200 karakter olabilir"
	MsgAmountPositive      = "Tutar pozitif olmalıdır"
	MsgInvalidCurrency     = "Geçersiz para birimi"
	MsgInvalidCategory     = "Geçersiz kategori"
	MsgInvalidPeriod       = "Geçersiz ödeme periyodu"
	MsgNextBillingRequired = "Yenileme tarihi gereklidir"
	MsgInvalidDate         = "Geçersiz tarih"
	MsgEmailRequired       = "Email gereklidir"
	MsgInvalidEmail        = "Geçerli bir email adresi giriniz"
)

type ExpenseForm struct {
	Title    string `form:"title" validate:"required,max=200"`
	Amount   string `form:"amount" validate:"required,amount"`
	Currency string `form:"currency" validate:"required,currency"`
	Category string `form:"category" validate:"required,category"`
}

type SubscriptionForm struct {
	Title         string `form:"title" validate:"required,max=200"`
	Amount        string `form:"amount" validate:"required,amount"`
	Currency      string `form:"currency" validate:"required,currency"`
	BillingPeriod string `form:"billing_period" validate:"required,billing_period"`
	NextBillingAt string `form:"next_billing_at" validate:"required,input_date"`
}

type LoginForm struct {
	Email string `form:"email" validate:"required,email"`
}

// FieldErrors maps a form field name to its message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}
	return "invalid form: " + strings.Join(parts, ", ")
}

// Get returns the message for field or "".
func (fe FieldErrors) Get(field string) string {
	return fe[field]
}

// DefaultExpenseForm returns the values an empty expense form starts with.
func DefaultExpenseForm() ExpenseForm {
	return ExpenseForm{Currency: core.DefaultCurrency, Category: core.DefaultCategory}
}

// DefaultSubscriptionForm returns the values an empty subscription form
// starts with; the renewal date defaults to today.
func DefaultSubscriptionForm(today time.Time) SubscriptionForm {
	return SubscriptionForm{
		Currency:      core.DefaultCurrency,
		BillingPeriod: string(core.Monthly),
		NextBillingAt: today.Format(inputDateLayout),
	}
}

func DecodeExpense(values url.Values) ExpenseForm {
	return ExpenseForm{
		Title:    strings.TrimSpace(values.Get("title")),
		Amount:   strings.TrimSpace(values.Get("amount")),
		Currency: strings.TrimSpace(values.Get("currency")),
		Category: strings.TrimSpace(values.Get("category")),
	}
}

func DecodeSubscription(values url.Values) SubscriptionForm {
	return SubscriptionForm{
		Title:         strings.TrimSpace(values.Get("title")),
		Amount:        strings.TrimSpace(values.Get("amount")),
		Currency:      strings.TrimSpace(values.Get("currency")),
		BillingPeriod: strings.TrimSpace(values.Get("billing_period")),
		NextBillingAt: strings.TrimSpace(values.Get("next_billing_at")),
	}
}

func DecodeLogin(values url.Values) LoginForm {
	return LoginForm{Email: strings.TrimSpace(values.Get("email"))}
}

// Validator turns decoded forms into create requests.
type Validator struct {
	validate *validator.Validate
	loc      *time.Location
}

// NewValidator returns a validator that reads dates as midnight in loc.
func NewValidator(loc *time.Location) *Validator {
	if loc == nil {
		loc = time.UTC
	}
	v := validator.New()

	_ = v.RegisterValidation("amount", validateAmount)
	_ = v.RegisterValidation("currency", validateCurrency)
	_ = v.RegisterValidation("category", validateCategory)
	_ = v.RegisterValidation("billing_period", validateBillingPeriod)
	_ = v.RegisterValidation("input_date", validateInputDate)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: v, loc: loc}
}

// Expense validates form and builds the request for userID. Field errors
// are returned instead of a request when any rule fails.
func (v *Validator) Expense(form ExpenseForm, userID uuid.UUID) (core.CreateExpenseRequest, FieldErrors) {
	if errs := v.check(form); errs != nil {
		return core.CreateExpenseRequest{}, errs
	}
	amount, _ := core.ParseAmount(form.Amount)
	return core.CreateExpenseRequest{
		UserID:   userID,
		Title:    form.Title,
		Amount:   amount,
		Currency: form.Currency,
		Category: form.Category,
	}, nil
}

// Subscription validates form and builds the request for userID.
func (v *Validator) Subscription(form SubscriptionForm, userID uuid.UUID) (core.CreateSubscriptionRequest, FieldErrors) {
	if errs := v.check(form); errs != nil {
		return core.CreateSubscriptionRequest{}, errs
	}
	amount, _ := core.ParseAmount(form.Amount)
	next, _ := time.ParseInLocation(inputDateLayout, form.NextBillingAt, v.loc)
	return core.CreateSubscriptionRequest{
		UserID:        userID,
		Title:         form.Title,
		Amount:        amount,
		Currency:      form.Currency,
		BillingPeriod: core.BillingPeriod(form.BillingPeriod),
		NextBillingAt: next,
	}, nil
}

// Login validates the email of the login form.
func (v *Validator) Login(form LoginForm) (string, FieldErrors) {
	if errs := v.check(form); errs != nil {
		return "", errs
	}
	return form.Email, nil
}

func (v *Validator) check(form any) FieldErrors {
	err := v.validate.Struct(form)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return FieldErrors{"_": err.Error()}
	}
	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		out[fe.Field()] = message(fe.Field(), fe.Tag())
	}
	return out
}

func message(field, tag string) string {
	switch field {
	case "title":
		if tag == "max" {
			return MsgTitleTooLong
		}
		return MsgTitleRequired
	case "amount":
		return MsgAmountPositive
	case "currency":
		return MsgInvalidCurrency
	case "category":
		return MsgInvalidCategory
	case "billing_period":
		return MsgInvalidPeriod
	case "next_billing_at":
		if tag == "required" {
			return MsgNextBillingRequired
		}
		return MsgInvalidDate
	case "email":
		if tag == "required" {
			return MsgEmailRequired
		}
		return MsgInvalidEmail
	default:
		return "Geçersiz değer"
	}
}

func validateAmount(fl validator.FieldLevel) bool {
	_, err := core.ParseAmount(fl.Field().String())
	return err == nil
}

func validateCurrency(fl validator.FieldLevel) bool {
	return core.IsCurrency(fl.Field().String())
}

func validateCategory(fl validator.FieldLevel) bool {
	return core.IsCategory(fl.Field().String())
}

func validateBillingPeriod(fl validator.FieldLevel) bool {
	return core.BillingPeriod(fl.Field().String()).Valid()
}

func validateInputDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(inputDateLayout, fl.Field().String())
	return err == nil
}
