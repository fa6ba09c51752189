package user

type AccessToken string

type AccessTokenIssuer interface {
	IssueAccessToken(u User) (AccessToken, error)
	ParseAccessToken(token AccessToken) (ID, error)
}
