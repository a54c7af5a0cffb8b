package handlers

import (
	"github.com/gofiber/fiber/v2"

	"medicatalog/internal/domain"
)

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	// Inject user if present
	if u := c.Locals("user"); u != nil {
		data["User"] = u
	}
	lang := Lang(c)
	data["Lang"] = string(lang)
	data["Dir"] = "ltr"
	if lang == domain.LangAR {
		data["Dir"] = "rtl"
	}
	data["T"] = labels[lang]
	data["Languages"] = domain.Languages()
	// Pick up the token the CSRF middleware put into Locals
	if tok, _ := c.Locals("CSRFToken").(string); tok != "" {
		data["CSRFToken"] = tok
	} else if tok := c.Cookies("csrf_"); tok != "" {
		data["CSRFToken"] = tok
	}
	return c.Render(tmpl, data)
}

func notFound(c *fiber.Ctx, msg string) error {
	c.Status(fiber.StatusNotFound)
	return render(c, "notfound", fiber.Map{"Message": msg})
}

// labels holds the few interface strings the pages print.
var labels = map[domain.Language]map[string]string{
	domain.LangFR: {
		"Products": "Produits", "Search": "Rechercher", "Cart": "Panier", "AddToCart": "Ajouter au panier",
		"Quote": "Demander un devis", "Login": "Connexion", "Logout": "Déconnexion", "Empty": "Votre panier est vide.",
		"Unavailable": "Indisponible", "NotFound": "Produit introuvable", "Features": "Caractéristiques",
		"All": "Tous", "Filter": "Filtrer", "Results": "résultat(s)", "Remove": "Retirer", "Update": "Mettre à jour",
		"Name": "Nom", "Email": "E-mail", "Phone": "Téléphone", "QuoteSent": "Votre demande de devis a été envoyée.",
		"Retry": "Le catalogue est momentanément indisponible. Réessayez.",
		"Reviews": "Avis clients", "NoReviews": "Aucun avis pour le moment.",
	},
	domain.LangEN: {
		"Products": "Products", "Search": "Search", "Cart": "Cart", "AddToCart": "Add to cart",
		"Quote": "Request a quote", "Login": "Log in", "Logout": "Log out", "Empty": "Your cart is empty.",
		"Unavailable": "Unavailable", "NotFound": "Product not found", "Features": "Features",
		"All": "All", "Filter": "Filter", "Results": "result(s)", "Remove": "Remove", "Update": "Update",
		"Name": "Name", "Email": "Email", "Phone": "Phone", "QuoteSent": "Your quote request has been sent.",
		"Retry": "The catalog is temporarily unavailable. Please retry.",
		"Reviews": "Customer reviews", "NoReviews": "No reviews yet.",
	},
	domain.LangAR: {
		"Products": "المنتجات", "Search": "بحث", "Cart": "السلة", "AddToCart": "أضف إلى السلة",
		"Quote": "طلب عرض سعر", "Login": "تسجيل الدخول", "Logout": "تسجيل الخروج", "Empty": "سلتك فارغة.",
		"Unavailable": "غير متوفر", "NotFound": "المنتج غير موجود", "Features": "المميزات",
		"All": "الكل", "Filter": "تصفية", "Results": "نتيجة", "Remove": "إزالة", "Update": "تحديث",
		"Name": "الاسم", "Email": "البريد الإلكتروني", "Phone": "الهاتف", "QuoteSent": "تم إرسال طلب عرض السعر.",
		"Retry": "الكتالوج غير متاح مؤقتًا. حاول مرة أخرى.",
		"Reviews": "آراء العملاء", "NoReviews": "لا توجد آراء بعد.",
	},
}
