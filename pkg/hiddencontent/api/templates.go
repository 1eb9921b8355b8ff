package api

import "html/template"

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body class="{{.Type}}-template">
<main id="main">
<article id="post-{{.ID}}">
<h1 class="entry-title">{{.Title}}</h1>
<div class="entry-content">{{.Body}}</div>
</article>
</main>
{{.Footer}}</body>
</html>
`))

type pageView struct {
	ID     int64
	Type   string
	Title  string
	Body   template.HTML
	Footer template.HTML
}

var editTemplate = template.Must(template.New("edit").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Edit {{.Page.Title}}</title>
</head>
<body class="post-type-{{.Page.Type}}">
{{if .Saved}}<div id="message" class="notice notice-success"><p>Page updated.</p></div>{{end}}
<form id="post" method="post" action="/admin/pages/{{.Page.ID}}">
<input type="hidden" name="post_ID" value="{{.Page.ID}}">
<input type="hidden" name="post_type" value="{{.Page.Type}}">
<div id="titlediv"><input type="text" name="post_title" id="title" value="{{.Page.Title}}"></div>
<div id="postdivrich"><textarea name="content" id="content" rows="20">{{.Page.Body}}</textarea></div>
{{range .Panels}}
<div id="{{.ID}}" class="postbox" data-context="{{.Context}}" data-priority="{{.Priority}}">
<h2 class="hndle">{{.Title}}</h2>
<div class="inside">
<input type="hidden" name="{{.NonceField}}" value="{{.Nonce}}">
{{if .Editor.MediaButtons}}<button type="button" class="insert-media" data-editor="{{.Editor.TextareaName}}" data-upload-url="/admin/media">Add Media</button>{{end}}
<textarea name="{{.Editor.TextareaName}}" id="{{.Editor.TextareaName}}" rows="{{.Editor.Rows}}"{{if .Editor.Teeny}} class="teeny"{{end}}>{{.Content}}</textarea>
<p class="description">{{.Help}}</p>
</div>
</div>
{{end}}
<input type="submit" name="save" id="publish" value="Update">
</form>
</body>
</html>
`))

type editView struct {
	Page   pageFields
	Panels []panelView
	Saved  bool
}

type pageFields struct {
	ID    int64
	Type  string
	Title string
	Body  string
}

type panelView struct {
	ID         string
	Title      string
	Context    string
	Priority   string
	NonceField string
	Nonce      string
	Content    string
	Help       string
	Editor     editorView
}

type editorView struct {
	TextareaName string
	Rows         int
	MediaButtons bool
	Teeny        bool
}
