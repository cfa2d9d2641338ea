package main

import (
	"os"
	"reflect"
	"strings"

	musgen "github.com/mus-format/musgen-go/mus"
	genops "github.com/mus-format/musgen-go/options/generate"
	structops "github.com/mus-format/musgen-go/options/struct"
	"github.com/poiesic/lexcorpus/core"
)

func main() {
	cwd, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	// go generate runs from core; the output path is relative to the module root
	if strings.HasSuffix(cwd, "core") {
		if err := os.Chdir(".."); err != nil {
			panic(err)
		}
	}
	g, err := musgen.NewCodeGenerator(
		genops.WithPkgPath("github.com/poiesic/lexcorpus/core"),
	)
	if err != nil {
		panic(err)
	}

	g.AddDefinedType(reflect.TypeFor[core.ID]())

	// Id, LawName, EID, Buckets, Title, Text, Link, Language
	err = g.AddStruct(reflect.TypeFor[core.Article](),
		structops.WithField(),
		structops.WithField(),
		structops.WithField(),
		structops.WithField(),
		structops.WithField(),
		structops.WithField(),
		structops.WithField(),
		structops.WithField())
	if err != nil {
		panic(err)
	}

	bs, err := g.Generate()
	if err != nil {
		panic(err)
	}

	if err := os.WriteFile("./core/records_mus.gen.go", bs, 0644); err != nil {
		panic(err)
	}
}
