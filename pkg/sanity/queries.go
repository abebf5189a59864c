package sanity

// projectProjection は一覧取得と単一取得で共通の射影。
const projectProjection = `{
		_id,
		title,
		slug,
		description,
		details,
		image,
		technologies,
		githubUrl,
		liveUrl,
		featured
	}`

// ProjectsQuery は全projectをorder昇順、同順位は作成日時の降順で取得するクエリ。
const ProjectsQuery = `*[_type == "project"] | order(order asc, _createdAt desc) ` + projectProjection

// ProjectBySlugQuery はスラッグが一致する最初のprojectを取得するクエリ。$slugパラメータを使う。
const ProjectBySlugQuery = `*[_type == "project" && slug.current == $slug][0] ` + projectProjection
