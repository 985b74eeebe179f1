package service

import "context"

// BotVerifier is the yes/no gate consulted before registration and login when
// the client supplies a verification token. The integration with a concrete
// provider lives outside this package.
type BotVerifier interface {
	Verify(ctx context.Context, token, remoteIP string) (bool, error)
}

// BotVerifierFunc adapts a function to BotVerifier.
type BotVerifierFunc func(ctx context.Context, token, remoteIP string) (bool, error)

func (f BotVerifierFunc) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	return f(ctx, token, remoteIP)
}
