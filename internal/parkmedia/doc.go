// Package parkmedia provides a client for the Park Media (Kuvata KMM)
// digital signage management API.
//
// The service speaks form-encoded requests, a vendor XML dialect ("kdata")
// for asset edits, and answers in JSON, XML, HTML error pages or plain text.
// This package covers the whole round trip:
//
//   - Payload: an ordered key/value mapping used for request bodies and
//     decoded responses
//   - Codec: form, JSON and kdata XML encoders, JSON and XML decoders
//   - Classify: turns a response Envelope into a Result by content type
//   - Transport: one server connection with the required headers, session
//     cookie and a redacted debug trace
//   - Client: one method per remote operation plus generic verbs
//
// # Usage Example
//
//	client := parkmedia.NewClient(parkmedia.DefaultServerAddress, parkmedia.DefaultServerPort)
//
//	cookie, err := client.Login(ctx, "user", "secret")
//	if err != nil {
//	    log.Fatal(err) // transport failure
//	}
//	if cookie == "" {
//	    log.Fatalf("login rejected: %v", client.LastResult())
//	}
//
//	res, err := client.Devices(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	switch r := res.(type) {
//	case parkmedia.XMLResult:
//	    fmt.Println(r.Payload)
//	case parkmedia.HTMLResult:
//	    fmt.Println(r)
//	}
//
// # Status Codes
//
// HTTP failures never become errors. Every call records the status it
// expects (204 for DELETE, 200 for GET and PUT, 201 for POST) and
// Client.Success compares it with the last response.
//
// # Malformed XML
//
// A text/xml body that fails to parse decodes to an empty Payload rather
// than an error, matching what existing callers of the service rely on.
// ParseXML is available when the difference matters.
//
// # Thread Safety
//
// A Client and its Session are meant for a single goroutine. Share them
// across goroutines only behind external locking.
package parkmedia
