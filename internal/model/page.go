package model

// Page is a path-addressed resource controlled by the permission system
type Page struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	PageName    string `gorm:"type:varchar(100);not null;index" json:"page_name"`
	PagePath    string `gorm:"type:varchar(255);uniqueIndex;not null" json:"page_path"`
	PageTitleEn string `gorm:"type:varchar(255)" json:"page_title_en,omitempty"`
	PageTitleKm string `gorm:"type:varchar(255)" json:"page_title_km,omitempty"` // Khmer title
	Icon        string `gorm:"type:varchar(50)" json:"icon,omitempty"`
	SortOrder   *int   `json:"sort_order,omitempty"` // NULL sorts after every explicit value
	Timestamps
}

// DefaultSortOrder is the sentinel used for pages without an explicit order
const DefaultSortOrder = 999

// Names of seeded pages that the service itself refers to
const (
	PageDashboard       = "Dashboard"
	PagePagePermissions = "Page Permissions"
	PageSystemAdmin     = "System Admin"
)

func intPtr(v int) *int { return &v }

// DefaultPages is the page catalog seeded on first start
var DefaultPages = []Page{
	{PageName: PageDashboard, PagePath: "/dashboard", PageTitleEn: "Dashboard", PageTitleKm: "ផ្ទាំងគ្រប់គ្រង", Icon: "home", SortOrder: intPtr(1)},
	{PageName: "Schools", PagePath: "/schools", PageTitleEn: "Schools", PageTitleKm: "សាលារៀន", Icon: "school", SortOrder: intPtr(2)},
	{PageName: "Students", PagePath: "/students", PageTitleEn: "Students", PageTitleKm: "សិស្ស", Icon: "users", SortOrder: intPtr(3)},
	{PageName: "Teachers", PagePath: "/teachers", PageTitleEn: "Teachers", PageTitleKm: "គ្រូបង្រៀន", Icon: "user", SortOrder: intPtr(4)},
	{PageName: "Classes", PagePath: "/classes", PageTitleEn: "Classes", PageTitleKm: "ថ្នាក់រៀន", Icon: "book", SortOrder: intPtr(5)},
	{PageName: "Transcripts", PagePath: "/transcripts", PageTitleEn: "Transcripts", PageTitleKm: "ព្រឹត្តិប័ត្រពិន្ទុ", Icon: "file-text", SortOrder: intPtr(6)},
	{PageName: "Training Sessions", PagePath: "/training", PageTitleEn: "Training Sessions", PageTitleKm: "វគ្គបណ្តុះបណ្តាល", Icon: "calendar", SortOrder: intPtr(7)},
	{PageName: "Reports", PagePath: "/reports", PageTitleEn: "Reports", PageTitleKm: "របាយការណ៍", Icon: "bar-chart", SortOrder: intPtr(8)},
	{PageName: "Users", PagePath: "/users", PageTitleEn: "Users", PageTitleKm: "អ្នកប្រើប្រាស់", Icon: "user-cog", SortOrder: intPtr(9)},
	{PageName: PagePagePermissions, PagePath: "/settings/page-permissions", PageTitleEn: "Page Permissions", PageTitleKm: "សិទ្ធិទំព័រ", Icon: "shield", SortOrder: intPtr(10)},
	{PageName: PageSystemAdmin, PagePath: "/settings/system", PageTitleEn: "System Admin", PageTitleKm: "គ្រប់គ្រងប្រព័ន្ធ", Icon: "settings", SortOrder: intPtr(11)},
}

// DefaultPageGrants maps each non-admin role to the pages it sees after
// seeding. Admin is granted every page.
var DefaultPageGrants = map[Role][]string{
	RoleDirector:    {PageDashboard, "Schools", "Students", "Teachers", "Classes", "Transcripts", "Training Sessions", "Reports"},
	RolePartner:     {PageDashboard, "Schools", "Reports"},
	RoleCoordinator: {PageDashboard, "Schools", "Students", "Teachers", "Classes", "Training Sessions", "Reports"},
	RoleMentor:      {PageDashboard, "Schools", "Students", "Classes", "Training Sessions"},
	RoleTeacher:     {PageDashboard, "Students", "Classes", "Transcripts"},
	RoleCollector:   {PageDashboard, "Students"},
	RoleViewer:      {PageDashboard, "Reports"},
}
