// Package client calls a remote sigv4auth server.
//
// Client implements the same ValidateRequest contract as sigv4auth.Validator,
// so a gateway can switch between in-process and remote validation without
// other changes:
//
//	c, err := client.New("http://localhost:5709")
//	if err != nil {
//	    return err
//	}
//
//	valid, err := c.ValidateRequest(ctx, stringToSign, signature, accessKey)
//	if errors.Is(err, sigv4auth.ErrResolverUnavailable) {
//	    // the server could not reach its key store; retry later
//	}
package client
