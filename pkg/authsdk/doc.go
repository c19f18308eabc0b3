/*
Package authsdk is a Go client for the authmodes service.

The service authenticates users in one of three modes, chosen per request:

  - stateless: a single signed token held in the "token" cookie
  - hybrid: a short-lived access token sent as a bearer header, plus a
    rotating refresh token held in the "refreshToken" cookie
  - session: an opaque session id held in the "sid" cookie

Client keeps a cookie jar, so the credential cookies set by Register and
Login are sent back automatically. In hybrid mode it also remembers the
latest access token and uses it for Me and Resources:

	c, err := authsdk.NewClient("http://localhost:8080")
	if err != nil {
		return err
	}

	creds := authsdk.Credentials{Email: "a@x.com", Password: "pw123456", Mode: authsdk.ModeHybrid}
	if errs := creds.Validate(); errs != nil {
		// field -> message
	}

	if _, err := c.Login(ctx, creds); err != nil {
		return err
	}
	me, err := c.Me(ctx, authsdk.ModeHybrid)

Failed calls return *APIError carrying the HTTP status and the reason the
server put in the response envelope.
*/
package authsdk
