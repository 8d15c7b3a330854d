// Package ideas lets signed-in users post ideas and lets admins remove them.
// Ideas are never edited in place and keep their author id after the author
// is deleted.
package ideas
