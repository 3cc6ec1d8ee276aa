// Package dto はauthフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

import userdto "social_backend/internal/feature/user/transport/http/dto"

// SignupReq は/auth/signupエンドポイントのリクエストボディを表します。
// バリデーションは順序付きでユースケース側が行うため、binding タグは付けません。
type SignupReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SigninReq は/auth/signinエンドポイントのリクエストボディを表します。
type SigninReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupRes is returned after a successful signup.
type SignupRes struct {
	Name string `json:"name"`
}

// SigninRes carries the access token and the signed-in user.
type SigninRes struct {
	Token string          `json:"token"`
	User  userdto.Profile `json:"user"`
}
