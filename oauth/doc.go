// Package oauth signs requests for the training registry with one-legged
// OAuth 1.0 (HMAC-SHA1, no token).
//
// Only the method, the URL and its query take part in the signature. The
// request body never does, which the remote verifier depends on.
//
//	signer, err := oauth.NewSigner(oauth.Credentials{
//		Identity:     "svc-account",
//		SharedSecret: "secret",
//	})
//	header, err := signer.Sign(http.MethodGet, "https://lms.example.com/svc/nodes?x=1")
//
// Header values go through EncodeRFC3986, which escapes ! * ' ( ) on top of
// the legacy data escaper.
package oauth
