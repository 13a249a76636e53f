// Package extract turns fetched HTML into the pieces the crawler records:
// the page title, its outbound links, the email addresses it mentions, and a
// best-effort human name for each address.
//
// Name association is a strategy chain. Each Strategy inspects a parsed
// Document for one kind of evidence (structured data, an enclosing contact
// block, nearby text) and the Associator returns the first non-empty answer.
package extract
