// Package docs holds the OpenAPI 2.0 document served under /swagger. It is
// maintained by hand next to the handler annotations, and the router tests
// check every documented path against the registered routes.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "tags": [
                    "platform"
                ],
                "summary": "Dependency status",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "All dependencies answer",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "503": {
                        "description": "A dependency is down",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/api/v1/auth/login": {
            "post": {
                "tags": [
                    "auth"
                ],
                "summary": "Staff login",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "services.AuthResponse",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "401": {
                        "description": "utils.APIError",
                        "schema": {
                            "type": "object"
                        }
                    }
                },
                "parameters": [
                    {
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        },
                        "description": "Credentials (services.LoginRequest)"
                    }
                ]
            }
        },
        "/api/v1/auth/refresh": {
            "post": {
                "tags": [
                    "auth"
                ],
                "summary": "Refresh tokens",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "services.AuthResponse",
                        "schema": {
                            "type": "object"
                        }
                    }
                },
                "parameters": [
                    {
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        },
                        "description": "Refresh token (services.RefreshRequest)"
                    }
                ]
            }
        },
        "/api/v1/auth/me": {
            "get": {
                "tags": [
                    "auth"
                ],
                "summary": "Current user",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "models.User",
                        "schema": {
                            "type": "object"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/auth/password-reset": {
            "post": {
                "tags": [
                    "auth"
                ],
                "summary": "Request a password reset email",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Acknowledged",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "504": {
                        "description": "utils.APIError",
                        "schema": {
                            "type": "object"
                        }
                    }
                },
                "parameters": [
                    {
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        },
                        "description": "Email (services.PasswordResetRequest)"
                    }
                ]
            }
        },
        "/api/v1/public/reservations": {
            "post": {
                "tags": [
                    "reservations"
                ],
                "summary": "Request a console reservation",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "models.Reservation",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "400": {
                        "description": "utils.APIError",
                        "schema": {
                            "type": "object"
                        }
                    }
                },
                "parameters": [
                    {
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        },
                        "description": "Reservation (services.CreateReservationRequest)"
                    }
                ]
            }
        },
        "/api/v1/public/contact": {
            "post": {
                "tags": [
                    "contact"
                ],
                "summary": "Relay the public contact form to the store inbox",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Sent",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "504": {
                        "description": "utils.APIError",
                        "schema": {
                            "type": "object"
                        }
                    }
                },
                "parameters": [
                    {
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        },
                        "description": "Message (services.ContactRequest)"
                    }
                ]
            }
        },
        "/api/v1/public/consoles/counter": {
            "get": {
                "tags": [
                    "consoles"
                ],
                "summary": "Available consoles per type",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "models.ConsoleCounter",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/api/v1/public/products": {
            "get": {
                "tags": [
                    "products"
                ],
                "summary": "Storefront product list (active only)",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "listResponse",
                        "schema": {
                            "type": "object"
                        }
                    }
                },
                "parameters": [
                    {
                        "in": "query",
                        "name": "category",
                        "type": "string",
                        "description": "Category"
                    },
                    {
                        "in": "query",
                        "name": "quick_sale",
                        "type": "boolean",
                        "description": "Quick-sale items only"
                    }
                ]
            }
        },
        "/api/v1/public/service-requests": {
            "post": {
                "tags": [
                    "repairs"
                ],
                "summary": "Submit a repair request",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "models.ServiceRequest",
                        "schema": {
                            "type": "object"
                        }
                    }
                },
                "parameters": [
                    {
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        },
                        "description": "Request (services.CreateServiceRequestRequest)"
                    }
                ]
            }
        },
        "/api/v1/cart/items": {
            "post": {
                "tags": [
                    "cart"
                ],
                "summary": "Add one unit of a product to the cart",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "models.CartView",
                        "schema": {
                            "type": "object"
                        }
                    }
                },
                "parameters": [
                    {
                        "in": "header",
                        "name": "X-Cart-ID",
                        "type": "string",
                        "description": "Cart id, created when missing"
                    },
                    {
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        },
                        "description": "Product ({\"product_id\": 1})"
                    }
                ]
            }
        },
        "/api/v1/checkout": {
            "post": {
                "tags": [
                    "orders"
                ],
                "summary": "Place an online order from the cart or explicit items",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "models.Order",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "400": {
                        "description": "utils.APIError",
                        "schema": {
                            "type": "object"
                        }
                    }
                },
                "parameters": [
                    {
                        "in": "header",
                        "name": "X-Cart-ID",
                        "type": "string",
                        "description": "Cart id"
                    },
                    {
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        },
                        "description": "Order (services.CheckoutRequest)"
                    }
                ]
            }
        },
        "/api/v1/clients": {
            "post": {
                "tags": [
                    "clients"
                ],
                "summary": "Create client",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "models.Client",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "409": {
                        "description": "utils.APIError",
                        "schema": {
                            "type": "object"
                        }
                    }
                },
                "parameters": [
                    {
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        },
                        "description": "Client (services.CreateClientRequest)"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/points": {
            "post": {
                "tags": [
                    "points"
                ],
                "summary": "Post a points transaction",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "models.PointsTransaction",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "409": {
                        "description": "insufficient points",
                        "schema": {
                            "type": "object"
                        }
                    }
                },
                "parameters": [
                    {
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        },
                        "description": "Transaction (services.CreatePointsTransactionRequest)"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/sessions": {
            "post": {
                "tags": [
                    "sessions"
                ],
                "summary": "Start a gaming session on an available console",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "models.GamingSession",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "409": {
                        "description": "console not available",
                        "schema": {
                            "type": "object"
                        }
                    }
                },
                "parameters": [
                    {
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        },
                        "description": "Session (services.StartSessionRequest)"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/sessions/{id}/end": {
            "post": {
                "tags": [
                    "sessions"
                ],
                "summary": "End a session and bill it",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "models.SessionReceipt",
                        "schema": {
                            "type": "object"
                        }
                    }
                },
                "parameters": [
                    {
                        "in": "path",
                        "name": "id",
                        "required": true,
                        "type": "integer",
                        "description": "Session ID"
                    },
                    {
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        },
                        "description": "Payment (services.EndSessionRequest)"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/sales": {
            "post": {
                "tags": [
                    "sales"
                ],
                "summary": "Record a walk-in sale",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "models.Sale",
                        "schema": {
                            "type": "object"
                        }
                    }
                },
                "parameters": [
                    {
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        },
                        "description": "Sale (services.CreateSaleRequest)"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/products/{id}/stock": {
            "post": {
                "tags": [
                    "stock"
                ],
                "summary": "Adjust product stock",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "models.StockMovement",
                        "schema": {
                            "type": "object"
                        }
                    }
                },
                "parameters": [
                    {
                        "in": "path",
                        "name": "id",
                        "required": true,
                        "type": "integer",
                        "description": "Product ID"
                    },
                    {
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        },
                        "description": "Adjustment (services.AdjustStockRequest)"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/staff": {
            "post": {
                "tags": [
                    "staff"
                ],
                "summary": "Invite a staff member",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "services.CreateStaffResult",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "504": {
                        "description": "Invitation email timed out",
                        "schema": {
                            "type": "object"
                        }
                    }
                },
                "parameters": [
                    {
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        },
                        "description": "Staff member (services.CreateStaffRequest)"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/stats/analytics": {
            "get": {
                "tags": [
                    "stats"
                ],
                "summary": "Revenue, expenses and profit over a date range",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "models.AnalyticsSummary",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "400": {
                        "description": "utils.APIError",
                        "schema": {
                            "type": "object"
                        }
                    }
                },
                "parameters": [
                    {
                        "in": "query",
                        "name": "from",
                        "type": "string",
                        "description": "RFC 3339 or YYYY-MM-DD"
                    },
                    {
                        "in": "query",
                        "name": "to",
                        "type": "string",
                        "description": "RFC 3339 or YYYY-MM-DD"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/settings/{key}": {
            "put": {
                "tags": [
                    "settings"
                ],
                "summary": "Create or replace a store setting",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "models.StoreSetting",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "400": {
                        "description": "utils.APIError",
                        "schema": {
                            "type": "object"
                        }
                    }
                },
                "parameters": [
                    {
                        "in": "path",
                        "name": "key",
                        "required": true,
                        "type": "string",
                        "description": "Setting key"
                    },
                    {
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        },
                        "description": "Any JSON value (object)"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/admin/export": {
            "get": {
                "tags": [
                    "admin"
                ],
                "summary": "Dump the newest rows of the business tables",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "models.DataExport",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "403": {
                        "description": "utils.APIError",
                        "schema": {
                            "type": "object"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/admin/cleanup": {
            "delete": {
                "tags": [
                    "admin"
                ],
                "summary": "Delete closed records older than days_to_keep",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "models.CleanupResult",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "400": {
                        "description": "utils.APIError",
                        "schema": {
                            "type": "object"
                        }
                    }
                },
                "parameters": [
                    {
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        },
                        "description": "Retention (services.CleanupRequest)"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Game Store Zarzis API",
	Description:      "Gaming lounge, shop and repair desk backend.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
