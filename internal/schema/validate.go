package schema

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/nao1215/portfolio-content/pkg/content"
)

// FieldError は1フィールドの検証エラー。
type FieldError struct {
	// Field はフィールド名。
	Field string `json:"field"`
	// Rule は違反したルール（validatorのタグ名）。
	Rule string `json:"rule"`
	// Message は利用者向けのメッセージ。
	Message string `json:"message"`
}

// ValidationErrors はドキュメント検証で見つかったすべてのエラー。フィールドの宣言順に並ぶ。
type ValidationErrors []FieldError

// Error はエラーメッセージを返す。
func (e ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, fe := range e {
		msgs = append(msgs, fe.Field+": "+fe.Message)
	}
	return "projectの検証に失敗: " + strings.Join(msgs, "; ")
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func engine() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate はprojectをProjectの宣言に照らして検証する。
// 違反がある場合はValidationErrorsを返す。読み取り結果には適用しない。
func Validate(p content.Project) error {
	return ValidateAgainst(Project, p)
}

// ValidateAgainst は任意のドキュメント型宣言に照らしてprojectを検証する。
func ValidateAgainst(doc DocumentType, p content.Project) error {
	var errs ValidationErrors
	for _, f := range doc.Fields {
		tag := Tag(f)
		if tag == "" {
			continue
		}
		value, ok := fieldValue(p, f.Name)
		if !ok {
			return fmt.Errorf("フィールド %s の値を取得できません", f.Name)
		}

		err := engine().Var(value, tag)
		if err == nil {
			continue
		}
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("フィールド %s の検証に失敗: %w", f.Name, err)
		}
		for _, ve := range verrs {
			errs = append(errs, FieldError{
				Field:   f.Name,
				Rule:    ve.Tag(),
				Message: message(ve.Tag(), ve.Param()),
			})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Tag はフィールド記述子からvalidatorのタグ文字列を導出する。
// 検証ルールを持たないフィールドでは空文字列を返す。
func Tag(f Field) string {
	var parts []string
	required := f.IsRequired()
	if required {
		parts = append(parts, "required")
	}
	for _, r := range f.Validation {
		switch r.Flag {
		case FlagMin:
			parts = append(parts, "min="+constraint(r))
		case FlagMax:
			parts = append(parts, "max="+constraint(r))
		case FlagURI:
			if !required {
				parts = append([]string{"omitempty"}, parts...)
			}
			parts = append(parts, "http_url")
		}
	}
	if f.Options != nil && f.Options.MaxLength > 0 {
		parts = append(parts, "max="+strconv.Itoa(f.Options.MaxLength))
	}
	return strings.Join(parts, ",")
}

func constraint(r Rule) string {
	return fmt.Sprint(r.Constraint)
}

// fieldValue はフィールド名に対応するprojectの値を返す。
// スラッグは{current}、画像はアセット参照を検証対象とする。
func fieldValue(p content.Project, name string) (any, bool) {
	switch name {
	case "title":
		return p.Title, true
	case "slug":
		return p.Slug.Current, true
	case "description":
		return p.Description, true
	case "details":
		return p.Details, true
	case "image":
		return p.Image.Asset.Ref, true
	case "technologies":
		return p.Technologies, true
	case "githubUrl":
		return p.GitHubURL, true
	case "liveUrl":
		return p.LiveURL, true
	case "featured":
		return p.Featured, true
	case "order":
		return p.OrderValue(), true
	}
	return nil, false
}

func message(tag, param string) string {
	switch tag {
	case "required":
		return "必須です"
	case "min":
		return fmt.Sprintf("%s件以上必要です", param)
	case "max":
		return fmt.Sprintf("%s文字以内で入力してください", param)
	case "http_url":
		return "http(s)のURL形式で入力してください"
	}
	return fmt.Sprintf("%s の検証に失敗しました", tag)
}
