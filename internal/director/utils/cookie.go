package utils

import (
	"net/http"
	"time"
)

func CreateDraftClientIDCookieHeader(clientID, cookieName string) http.Header {
	var clientIDHeader = http.Header{}
	clientIdCookie := &http.Cookie{
		Name:     cookieName,
		Value:    clientID,
		Path:     "/",
		HttpOnly: true,
		Expires:  time.Now().Add(time.Hour * 4),
	}
	if v := clientIdCookie.String(); v != "" {
		clientIDHeader.Add("Set-Cookie", v)
	}
	return clientIDHeader
}

func HasDraftClientIDCookie(r *http.Request, cookieName string) (bool, string) {
	for _, cookie := range r.Cookies() {
		if cookie.Name == cookieName {
			return true, cookie.Value
		}
	}
	return false, ""
}
