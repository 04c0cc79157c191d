package handler

import (
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"locallibrary/internal/policy"
	"locallibrary/internal/repository"
)

// Deps carries everything the route tree needs. Tests swap in a fixed
// clock and an Unlimited throttle here.
type Deps struct {
	DB       *gorm.DB
	Session  *scs.SessionManager
	Authz    policy.Authorizer
	Throttle policy.Throttle

	Users     repository.UserRepository
	Tokens    repository.TokenRepository
	Authors   repository.AuthorRepository
	Books     repository.BookRepository
	Instances repository.InstanceRepository
	Summary   repository.SummaryRepository

	TokenTTL   time.Duration
	RefreshTTL time.Duration
	Now        nowFunc
}

// Register wires both surfaces onto the engine: the session-backed
// catalog under /catalog and the token-backed REST API under /api.
func Register(e *gin.Engine, d Deps) {
	if d.Now == nil {
		d.Now = time.Now
	}

	authors := NewAuthorHandler(d.Authors)
	books := NewBookHandler(d.Books, d.DB)
	instances := NewInstanceHandler(d.Instances, d.Now)
	catalog := NewCatalogHandler(d.Summary, d.Instances, d.Session)
	taxonomy := NewTaxonomyHandler(d.DB)
	auth := NewAuthHandler(d.Users, d.Tokens, d.Session, d.TokenTTL, d.RefreshTTL, d.Now)

	require := func(op policy.Operation) gin.HandlerFunc {
		return Require(d.Authz, op)
	}

	web := e.Group("/catalog")
	web.Use(SessionAuth(d.Session, d.Users))
	{
		web.GET("", require(policy.OpViewSummary), catalog.Summary)
		web.GET("/availablebooks", require(policy.OpViewAvailability), catalog.Availability)
		web.GET("/search", require(policy.OpSearch), books.ListBooks)
		web.GET("/mybooks", require(policy.OpViewMyLoans), catalog.MyLoans)
		web.GET("/borrowed", require(policy.OpViewAllLoans), catalog.AllLoans)

		web.POST("/signup", require(policy.OpSignUp), auth.Signup)
		web.POST("/login", auth.Login)
		web.POST("/logout", auth.Logout)

		web.GET("/books", require(policy.OpListBooks), books.ListBooks)
		web.GET("/books/:id", require(policy.OpViewBook), books.GetBookByID)
		web.POST("/books", require(policy.OpAddBook), books.CreateBook)
		web.PATCH("/books/:id", require(policy.OpChangeBook), books.UpdateBook)
		web.DELETE("/books/:id", require(policy.OpDeleteBook), books.DeleteBook)

		web.GET("/authors", require(policy.OpListAuthors), authors.ListAuthors)
		web.GET("/authors/:id", require(policy.OpViewAuthor), authors.GetAuthorByID)
		web.POST("/authors", require(policy.OpAddAuthor), authors.CreateAuthor)
		web.PATCH("/authors/:id", require(policy.OpChangeAuthor), authors.UpdateAuthor)
		web.DELETE("/authors/:id", require(policy.OpDeleteAuthor), authors.DeleteAuthor)

		web.GET("/genres", require(policy.OpViewTaxonomy), taxonomy.ListGenres)
		web.GET("/genres/:id", require(policy.OpViewTaxonomy), taxonomy.GetGenreByID)
		web.POST("/genres", require(policy.OpAddGenre), taxonomy.CreateGenre)
		web.PATCH("/genres/:id", require(policy.OpChangeGenre), taxonomy.UpdateGenre)
		web.DELETE("/genres/:id", require(policy.OpDeleteGenre), taxonomy.DeleteGenre)

		web.GET("/languages", require(policy.OpViewTaxonomy), taxonomy.ListLanguages)
		web.GET("/languages/:id", require(policy.OpViewTaxonomy), taxonomy.GetLanguageByID)
		web.POST("/languages", require(policy.OpAddLanguage), taxonomy.CreateLanguage)
		web.PATCH("/languages/:id", require(policy.OpChangeLanguage), taxonomy.UpdateLanguage)
		web.DELETE("/languages/:id", require(policy.OpDeleteLanguage), taxonomy.DeleteLanguage)

		web.GET("/bookinstances/:id", require(policy.OpViewInstance), instances.GetInstanceByID)
		web.POST("/bookinstances", require(policy.OpAddInstance), instances.CreateInstance)
		web.POST("/bookinstances/:id/checkout", require(policy.OpSelfCheckout), instances.SelfCheckout)
		web.GET("/bookinstances/:id/renew", require(policy.OpRenewLoan), instances.ProposeRenewal)
		web.POST("/bookinstances/:id/renew", require(policy.OpRenewLoan), instances.RenewInstance)
		web.PATCH("/bookinstances/:id/staff", require(policy.OpStaffEditInstance), instances.StaffUpdateInstance)
		web.POST("/bookinstances/:id/return", require(policy.OpStaffEditInstance), instances.ReturnInstance)
		web.POST("/bookinstances/:id/withdraw", require(policy.OpStaffEditInstance), instances.WithdrawInstance)
		web.DELETE("/bookinstances/:id", require(policy.OpDeleteInstance), instances.DeleteInstance)
	}

	api := e.Group("/api")
	api.Use(TokenAuth(d.Tokens, d.Now))
	{
		api.POST("/token", auth.IssueTokens)
		api.POST("/token/refresh", auth.RefreshToken)

		basic := api.Group("", Throttled(d.Throttle, policy.ClassBasic))
		{
			basic.GET("/authors", require(policy.OpListAuthors), authors.ListAuthors)
			basic.GET("/authors/:id", require(policy.OpViewAuthor), authors.GetAuthorByID)
			basic.POST("/authors", require(policy.OpAPIWriteAuthor), authors.CreateAuthor)
			basic.PATCH("/authors/:id", require(policy.OpAPIWriteAuthor), authors.UpdateAuthor)
			basic.DELETE("/authors/:id", require(policy.OpAPIWriteAuthor), authors.DeleteAuthor)

			basic.GET("/books", require(policy.OpListBooks), books.ListBooks)
			basic.GET("/books/:id", require(policy.OpViewBook), books.GetBookByID)
			basic.POST("/books", require(policy.OpAPIWriteBook), books.CreateBook)
			basic.PATCH("/books/:id", require(policy.OpAPIWriteBook), books.UpdateBook)
			basic.DELETE("/books/:id", require(policy.OpAPIWriteBook), books.DeleteBook)
		}

		premium := api.Group("", Throttled(d.Throttle, policy.ClassPremium))
		{
			premium.GET("/bookinstances", require(policy.OpViewInstance), instances.ListInstances)
			premium.GET("/bookinstances/:id", require(policy.OpViewInstance), instances.GetInstanceByID)
			premium.POST("/bookinstances", require(policy.OpAddInstance), instances.CreateInstance)
			premium.PATCH("/bookinstances/:id", require(policy.OpStaffEditInstance), instances.StaffUpdateInstance)
			premium.DELETE("/bookinstances/:id", require(policy.OpDeleteInstance), instances.DeleteInstance)
		}
	}
}
