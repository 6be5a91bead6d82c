package ui

import "strings"

const skeletonCard = `<div class="col-md-3 mb-4"><div class="card h-100" aria-hidden="true">` +
	`<div class="skeleton skeleton-img card-img-top"></div>` +
	`<div class="card-body">` +
	`<h5 class="card-title skeleton skeleton-text"></h5>` +
	`<p class="card-text skeleton skeleton-text"></p>` +
	`<div class="skeleton skeleton-btn mt-3"></div>` +
	`</div></div></div>`

// RenderSkeleton replaces the target anchor's content with count
// placeholder cards. Repeated calls replace, never accumulate. No-op
// when the anchor is absent.
func RenderSkeleton(doc Document, targetID string, count int) {
	anchor, ok := doc.Anchor(targetID)
	if !ok {
		return
	}

	var b strings.Builder
	for i := 0; i < count; i++ {
		b.WriteString(skeletonCard)
	}
	anchor.SetHTML(b.String())
}
