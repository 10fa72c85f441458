package validation

import (
	"errors"
	"fmt"
)

// Fields はフォームの入力値。
type Fields struct {
	Name     string
	Email    string
	Password string
}

// ErrorSet はフィールド名から表示用メッセージへの対応。
// 送信のたびに作り直される。空であれば入力は有効。
type ErrorSet map[Field]string

// Valid はエラーが1件もない場合にtrueを返す。
func (s ErrorSet) Valid() bool {
	return len(s) == 0
}

// Has は指定フィールドにエラーがある場合にtrueを返す。
func (s ErrorSet) Has(f Field) bool {
	_, ok := s[f]
	return ok
}

// ValidateForm はモードに応じてフォーム全体を検証する。
// email と password は常に検証し、name はサインアップ時のみ検証する。
func ValidateForm(mode Mode, fields Fields) ErrorSet {
	errs := ErrorSet{}

	if mode == ModeSignUp {
		errs.add(ValidateName(fields.Name))
	}
	errs.add(ValidateEmail(fields.Email))
	errs.add(ValidatePassword(fields.Password))

	return errs
}

func (s ErrorSet) add(err error) {
	if err == nil {
		return
	}
	var fe *Error
	if errors.As(err, &fe) {
		s[fe.Field] = fe.Message
		return
	}
	s[FieldGeneral] = err.Error()
}

// FormError はフォーム検証に失敗したことを表すエラー。
// サービス層はこのエラーを返した時点でネットワーク呼び出しを行わない。
type FormError struct {
	Errors ErrorSet
}

// Error はerrorインターフェースを実装する。
func (e *FormError) Error() string {
	return fmt.Sprintf("form validation failed: %d field(s)", len(e.Errors))
}

// Check はValidateFormを実行し、エラーがあれば*FormErrorを返す。
func Check(mode Mode, fields Fields) error {
	if errs := ValidateForm(mode, fields); !errs.Valid() {
		return &FormError{Errors: errs}
	}
	return nil
}
