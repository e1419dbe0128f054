package database

import (
	"embed"
	"io/fs"
)

// migrationsEmbed, SQL migration dosyalarını binary'nin içine gömer.
//
// //go:embed direktifi Go 1.16 ile geldi — derlemede dosyalar binary'e
// dahil edilir, deploy sırasında migration dosyalarını ayrıca taşımak
// gerekmez.
//
//go:embed migrations/*.sql
var migrationsEmbed embed.FS

// MigrationsFS, gömülü migration dosyalarını "migrations/" öneki olmadan
// döner. database.New kök dizinde .sql dosyaları bekler, fs.Sub ile
// alt dizine "iniyoruz".
func MigrationsFS() fs.FS {
	sub, err := fs.Sub(migrationsEmbed, "migrations")
	if err != nil {
		// embed derleme zamanında garanti — buraya düşmek imkansız
		panic(err)
	}
	return sub
}
