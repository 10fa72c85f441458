// Package navigation はセッションと登録状態からメニューとアクションの遷移先を決定する。
// パッケージ内の関数はすべて純粋で、I/Oを行わない。
package navigation

// Action はヘッダーメニューやページ内から呼び出せる操作。
type Action string

const (
	ActionSignIn           Action = "sign_in"
	ActionSignUp           Action = "sign_up"
	ActionLoading          Action = "loading"
	ActionDashboard        Action = "dashboard"
	ActionViewProfile      Action = "view_profile"
	ActionEditProfile      Action = "edit_profile"
	ActionCustomerProjects Action = "customer_projects"
	ActionRegisterDesigner Action = "register_designer"
	ActionRegisterProject  Action = "register_project"
	ActionMyProjects       Action = "my_projects"
	ActionMyQuotes         Action = "my_quotes"
	ActionSignOut          Action = "sign_out"

	// メニュー外（デザイナー一覧など）から呼び出される操作。対象のデザイナーIDを伴う。
	ActionViewDesigner    Action = "view_designer"
	ActionContactDesigner Action = "contact_designer"
)

// Item はアクションの表示情報。
type Item struct {
	Action          Action `json:"action"`
	Label           string `json:"label"`
	Path            string `json:"path,omitempty"`
	RequiresSession bool   `json:"requires_session"`
}

type definition struct {
	label           string
	path            string // "{id}" は対象のデザイナーIDに置き換える
	requiresSession bool
}

var definitions = map[Action]definition{
	ActionSignIn:           {label: "Sign In"},
	ActionSignUp:           {label: "Sign Up"},
	ActionLoading:          {label: "Loading"},
	ActionDashboard:        {label: "Dashboard", path: "/dashboard", requiresSession: true},
	ActionViewProfile:      {label: "View Profile", path: "/designers/{id}", requiresSession: true},
	ActionEditProfile:      {label: "Edit Profile", path: "/dashboard/profile", requiresSession: true},
	ActionCustomerProjects: {label: "Customer Projects", path: "/dashboard/projects", requiresSession: true},
	ActionRegisterDesigner: {label: "Register as Designer", path: "/designer-registration", requiresSession: true},
	ActionRegisterProject:  {label: "Register Your Project", path: "/customer-registration", requiresSession: true},
	ActionMyProjects:       {label: "My Projects", path: "/my-projects", requiresSession: true},
	ActionMyQuotes:         {label: "My Quotes", path: "/my-quotes", requiresSession: true},
	ActionSignOut:          {label: "Sign Out", requiresSession: true},
	ActionViewDesigner:     {label: "View Profile", path: "/designers/{id}", requiresSession: true},
	ActionContactDesigner:  {label: "Contact Designer", path: "/designers/{id}/contact", requiresSession: true},
}

// Parse は文字列をActionに変換する。未知のアクションの場合はfalseを返す。
func Parse(s string) (Action, bool) {
	a := Action(s)
	if _, ok := definitions[a]; !ok || a == ActionLoading {
		return "", false
	}
	return a, true
}

// RequiresSession はアクションにサインインが必要かを返す。
func (a Action) RequiresSession() bool {
	return definitions[a].requiresSession
}

// TargetRequired はアクションが対象のデザイナーIDを必要とするかを返す。
func (a Action) TargetRequired() bool {
	return a == ActionViewDesigner || a == ActionContactDesigner
}
