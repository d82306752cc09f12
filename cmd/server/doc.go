// Command server runs the documentation playground service: the theme store,
// the sandboxed execution runtime, and the playground session API.
package main
