// Package platform models the host surfaces the theme store depends on:
// durable preference storage, the OS color-scheme query, and the document
// root whose styling attribute is observable by independently mounted
// consumers. Each is an interface with a production implementation and an
// in-memory counterpart for tests.
package platform
