package plan

import "github.com/unkn0wn-root/assembly/internal/answers"

const (
	DirApp    = "app"
	DirAssets = "app/assets"
	DirDist   = "dist"
)

var table = []Rule{
	{
		Name: "base-dirs",
		Tier: TierAlways,
		Ops: []Operation{
			Mkdir(DirApp),
			Mkdir(DirAssets),
			Mkdir("app/assets/css"),
			Mkdir("app/assets/fonts"),
			Mkdir("app/assets/img"),
			Mkdir("app/assets/js"),
			Mkdir(DirDist),
		},
	},
	{
		Name: "build-config",
		Tier: TierAlways,
		Ops: []Operation{
			Render("Gruntfile.js.tmpl", "Gruntfile.js"),
		},
	},
	{
		Name: "entry-point",
		Tier: TierAlways,
		Ops: []Operation{
			Render("nocms/index.html.tmpl", "app/index.html"),
			Copy("nocms/404.html", "app/404.html"),
			Copy("nocms/robots.txt", "app/robots.txt"),
			Copy("nocms/favicon.ico", "app/favicon.ico"),
			Copy("nocms/apple-touch-icon-precomposed.png", "app/apple-touch-icon-precomposed.png"),
		},
	},
	{
		Name: "manifests",
		Tier: TierAlways,
		Ops: []Operation{
			Render("global/package.json.tmpl", "package.json"),
			Render("global/bower.json.tmpl", "bower.json"),
			Copy("global/htaccess", ".htaccess"),
		},
	},
	{
		Name: "dotfiles",
		Tier: TierAlways,
		Ops: []Operation{
			Copy("global/editorconfig", ".editorconfig"),
			Copy("global/jshintrc", ".jshintrc"),
			Copy("global/bowerrc", ".bowerrc"),
			Copy("global/gitignore", GitignoreDest),
		},
	},
	stylesheetRule("less", "less", answers.IncludeLESS),
	stylesheetRule("sass", "scss", answers.IncludeSASS),
	{
		Name: "requirejs",
		Tier: TierOptional,
		Flag: answers.IncludeRequireJS,
		Ops: []Operation{
			Render("requirejs/main.js.tmpl", "app/assets/js/main.js"),
			Copy("global/app.js", "app/assets/js/app.js"),
		},
	},
}

// GitignoreDest is merged rather than overwritten by the executor.
const GitignoreDest = ".gitignore"

// stylesheetRule builds one branch of the preprocessor group. Both branches
// share file names and differ in directory and extension.
func stylesheetRule(dir, ext, flag string) Rule {
	root := DirAssets + "/" + dir
	src := "starter-" + dir
	ops := []Operation{
		Mkdir(root),
		Mkdir(root + "/site"),
		Copy(src+"/styles."+ext, root+"/styles."+ext),
	}
	for _, name := range []string{"variables", "mixins", "global"} {
		ops = append(ops, Copy(src+"/site/"+name+"."+ext, root+"/site/"+name+"."+ext))
	}
	return Rule{
		Name:  dir,
		Tier:  TierExclusive,
		Group: answers.KeyPreprocessor,
		Flag:  flag,
		Ops:   ops,
	}
}

// Rules returns a copy of the rule table in evaluation order.
func Rules() []Rule {
	out := make([]Rule, len(table))
	for i, r := range table {
		out[i] = r.clone()
	}
	return out
}
