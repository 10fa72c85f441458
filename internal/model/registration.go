package model

// RegistrationStatus はユーザーの登録状態（デザイナー/顧客プロジェクト）を表す。
// HasCustomerProject は IsDesigner が false の場合にのみ意味を持つ。
type RegistrationStatus struct {
	IsDesigner         bool   `json:"is_designer"`
	HasCustomerProject bool   `json:"has_customer_project"`
	Loading            bool   `json:"loading"`
	DesignerID         string `json:"designer_id,omitempty"`
}

// UnregisteredStatus は未ログインまたは未登録ユーザーの既定の登録状態を返す。
func UnregisteredStatus() RegistrationStatus {
	return RegistrationStatus{}
}

// LoadingStatus は登録状態の解決中であることを示す状態を返す。
func LoadingStatus() RegistrationStatus {
	return RegistrationStatus{Loading: true}
}
