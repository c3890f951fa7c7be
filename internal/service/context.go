package service

import "context"

type loginKey struct{}

// WithLogin кладёт логин аутентифицированного пользователя в контекст.
func WithLogin(ctx context.Context, login string) context.Context {
	return context.WithValue(ctx, loginKey{}, login)
}

// LoginFrom возвращает логин из контекста или пустую строку для анонимного запроса.
func LoginFrom(ctx context.Context) string {
	login, _ := ctx.Value(loginKey{}).(string)
	return login
}
