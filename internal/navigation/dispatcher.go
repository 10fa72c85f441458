package navigation

import (
	"errors"

	"github.com/interiorly/interiorly/internal/validation"
)

var (
	// ErrUnknownAction は存在しないアクションが指定された場合のエラー。
	ErrUnknownAction = errors.New("unknown action")
	// ErrUnavailable は現在の状態では実行できないアクションが指定された場合のエラー。
	ErrUnavailable = errors.New("action not available")
	// ErrTargetRequired は対象のデザイナーIDが指定されていない場合のエラー。
	ErrTargetRequired = errors.New("target designer is required")
)

// PendingAction はサインイン前に要求され、サインイン後に再開されるアクション。
type PendingAction string

const (
	PendingNone             PendingAction = ""
	PendingRegisterDesigner PendingAction = "register_designer"
	PendingRegisterCustomer PendingAction = "register_customer"
)

// ParsePending は文字列をPendingActionに変換する。未知の値はPendingNoneになる。
func ParsePending(s string) PendingAction {
	switch p := PendingAction(s); p {
	case PendingRegisterDesigner, PendingRegisterCustomer:
		return p
	default:
		return PendingNone
	}
}

// PendingFor はサインインが必要なアクションから保留するアクションを決める。
// 再開するのはデザイナー登録と顧客プロジェクト登録のみ。
// プロフィール閲覧や問い合わせはサインイン後に再開しない。
func PendingFor(a Action) PendingAction {
	switch a {
	case ActionRegisterDesigner:
		return PendingRegisterDesigner
	case ActionRegisterProject:
		return PendingRegisterCustomer
	default:
		return PendingNone
	}
}

// OutcomeKind はアクション実行結果の種類。
type OutcomeKind string

const (
	OutcomeNavigate      OutcomeKind = "navigate"
	OutcomeOpenAuthModal OutcomeKind = "open_auth_modal"
	OutcomeSignOut       OutcomeKind = "sign_out"
)

// Outcome はアクション実行の結果。
type Outcome struct {
	Kind     OutcomeKind     `json:"kind"`
	Path     string          `json:"path,omitempty"`
	AuthMode validation.Mode `json:"auth_mode,omitempty"`
	Pending  PendingAction   `json:"pending_action,omitempty"`
}

// Dispatcher はアクションの実行と保留アクションの再開を担う。
type Dispatcher struct{}

// Invoke はアクションを実行した結果を返す。
// サインインが必要なアクションを未ログインで実行した場合はサインインモードの認証モーダルを開く。
func (Dispatcher) Invoke(a Action, target string, s State) (Outcome, error) {
	if _, ok := definitions[a]; !ok || a == ActionLoading {
		return Outcome{}, ErrUnknownAction
	}

	switch a {
	case ActionSignIn, ActionSignUp:
		if s.SignedIn {
			return Outcome{}, ErrUnavailable
		}
		mode := validation.ModeSignIn
		if a == ActionSignUp {
			mode = validation.ModeSignUp
		}
		return Outcome{Kind: OutcomeOpenAuthModal, AuthMode: mode}, nil
	}

	if a.TargetRequired() && target == "" {
		return Outcome{}, ErrTargetRequired
	}

	if !s.SignedIn {
		return Outcome{
			Kind:     OutcomeOpenAuthModal,
			AuthMode: validation.ModeSignIn,
			Pending:  PendingFor(a),
		}, nil
	}

	if !Available(a, s) {
		return Outcome{}, ErrUnavailable
	}

	if a == ActionSignOut {
		return Outcome{Kind: OutcomeSignOut}, nil
	}

	id := target
	if !a.TargetRequired() {
		id = s.Status.DesignerID
	}
	return Outcome{Kind: OutcomeNavigate, Path: describe(a, id).Path}, nil
}

// Resume はサインイン成功後に保留アクションの遷移先を返す。
// 再開するものがない場合はfalseを返す。
func (Dispatcher) Resume(p PendingAction) (Outcome, bool) {
	switch p {
	case PendingRegisterDesigner:
		return Outcome{Kind: OutcomeNavigate, Path: definitions[ActionRegisterDesigner].path}, true
	case PendingRegisterCustomer:
		return Outcome{Kind: OutcomeNavigate, Path: definitions[ActionRegisterProject].path}, true
	default:
		return Outcome{}, false
	}
}
