package navigation

import (
	"slices"
	"strings"

	"github.com/interiorly/interiorly/internal/model"
)

// State はメニューを決定するための入力。
type State struct {
	SignedIn bool
	IsAdmin  bool
	Status   model.RegistrationStatus
}

// Menu は状態に応じて表示するアクションを返す。
//
//	未ログイン                       → sign_in, sign_up
//	ログイン済み・登録状態を解決中   → loading
//	デザイナー                       → dashboard, view_profile, edit_profile, customer_projects, sign_out
//	管理者（デザイナー以外）         → sign_out
//	顧客プロジェクトあり             → my_projects, my_quotes, sign_out
//	未登録                           → register_designer, register_project, sign_out
func Menu(s State) []Action {
	switch {
	case !s.SignedIn:
		return []Action{ActionSignIn, ActionSignUp}
	case s.Status.Loading:
		return []Action{ActionLoading}
	case s.Status.IsDesigner:
		return []Action{ActionDashboard, ActionViewProfile, ActionEditProfile, ActionCustomerProjects, ActionSignOut}
	case s.IsAdmin:
		return []Action{ActionSignOut}
	case s.Status.HasCustomerProject:
		return []Action{ActionMyProjects, ActionMyQuotes, ActionSignOut}
	default:
		return []Action{ActionRegisterDesigner, ActionRegisterProject, ActionSignOut}
	}
}

// Items はMenuの結果を表示情報付きで返す。
func Items(s State) []Item {
	actions := Menu(s)
	items := make([]Item, 0, len(actions))
	for _, a := range actions {
		items = append(items, describe(a, s.Status.DesignerID))
	}
	return items
}

// Available はサインイン済みの状態でアクションを実行できるかを返す。
// メニュー外のアクションはサインイン済みであれば常に実行できる。
func Available(a Action, s State) bool {
	if !s.SignedIn {
		return false
	}
	if a.TargetRequired() {
		return !s.Status.Loading
	}
	return slices.Contains(Menu(s), a)
}

func describe(a Action, designerID string) Item {
	d := definitions[a]
	return Item{
		Action:          a,
		Label:           d.label,
		Path:            strings.ReplaceAll(d.path, "{id}", designerID),
		RequiresSession: d.requiresSession,
	}
}
