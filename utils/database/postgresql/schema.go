package postgresql

import (
	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const (
	tablePages       = "site_pages"
	tableCategories  = "blog_categories"
	tablePosts       = "blog_posts"
	tableSubscribers = "newsletter_subscribers"
	tableAppointment = "appointments"
)

// text keeps page JSON byte for byte; jsonb would reorder object keys.
var text = map[string]string{dialect.Postgres: "text"}

var (
	pagesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 128},
		{Name: "title", Type: field.TypeString, Default: ""},
		{Name: "content", Type: field.TypeString, SchemaType: text},
		{Name: "revision", Type: field.TypeInt64, Default: 1},
		{Name: "updated_at", Type: field.TypeTime},
	}
	PagesTable = &schema.Table{
		Name:       tablePages,
		Columns:    pagesColumns,
		PrimaryKey: []*schema.Column{pagesColumns[0]},
	}

	categoriesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "slug", Type: field.TypeString, Unique: true},
		{Name: "name", Type: field.TypeString},
	}
	CategoriesTable = &schema.Table{
		Name:       tableCategories,
		Columns:    categoriesColumns,
		PrimaryKey: []*schema.Column{categoriesColumns[0]},
	}

	postsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "slug", Type: field.TypeString, Unique: true},
		{Name: "title", Type: field.TypeString},
		{Name: "excerpt", Type: field.TypeString, SchemaType: text, Default: ""},
		{Name: "body_markdown", Type: field.TypeString, SchemaType: text},
		{Name: "category_id", Type: field.TypeInt64, Nullable: true},
		{Name: "published", Type: field.TypeBool, Default: false},
		{Name: "published_at", Type: field.TypeTime, Nullable: true},
		{Name: "updated_at", Type: field.TypeTime},
	}
	PostsTable = &schema.Table{
		Name:       tablePosts,
		Columns:    postsColumns,
		PrimaryKey: []*schema.Column{postsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "blog_posts_category",
				Columns:    []*schema.Column{postsColumns[5]},
				RefColumns: []*schema.Column{categoriesColumns[0]},
				OnDelete:   schema.SetNull,
			},
		},
		Indexes: []*schema.Index{
			{Name: "blog_posts_published_at", Columns: []*schema.Column{postsColumns[6], postsColumns[7]}},
		},
	}

	subscribersColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "email", Type: field.TypeString, Unique: true},
		{Name: "status", Type: field.TypeString, Size: 16},
		{Name: "token", Type: field.TypeString, Unique: true},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "confirmed_at", Type: field.TypeTime, Nullable: true},
	}
	SubscribersTable = &schema.Table{
		Name:       tableSubscribers,
		Columns:    subscribersColumns,
		PrimaryKey: []*schema.Column{subscribersColumns[0]},
	}

	appointmentsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "name", Type: field.TypeString},
		{Name: "email", Type: field.TypeString},
		{Name: "phone", Type: field.TypeString, Default: ""},
		{Name: "starts_at", Type: field.TypeTime},
		{Name: "duration_minutes", Type: field.TypeInt},
		{Name: "message", Type: field.TypeString, SchemaType: text, Default: ""},
		{Name: "status", Type: field.TypeString, Size: 16},
		{Name: "created_at", Type: field.TypeTime},
	}
	AppointmentsTable = &schema.Table{
		Name:       tableAppointment,
		Columns:    appointmentsColumns,
		PrimaryKey: []*schema.Column{appointmentsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "appointments_starts_at", Columns: []*schema.Column{appointmentsColumns[4]}},
		},
	}

	Tables = []*schema.Table{
		PagesTable,
		CategoriesTable,
		PostsTable,
		SubscribersTable,
		AppointmentsTable,
	}
)

func init() {
	PostsTable.ForeignKeys[0].RefTable = CategoriesTable
}
