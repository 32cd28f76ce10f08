package openapi

import (
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
)

const (
	unauthorizedDesc = "Missing, invalid or insufficient credentials"
	tokenHeader      = "Authorization"
)

// Document describes the accounts API.
func Document(version string) *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       "User Accounts API",
			Description: "Create, authenticate, read, update and delete user accounts.",
			Version:     version,
		},
	}

	components := openapi3.NewComponents()
	components.Schemas = openapi3.Schemas{
		"User":    &openapi3.SchemaRef{Value: userSchema()},
		"Message": &openapi3.SchemaRef{Value: messageSchema()},
	}
	components.SecuritySchemes = openapi3.SecuritySchemes{
		"token": &openapi3.SecuritySchemeRef{
			Value: &openapi3.SecurityScheme{
				Type:        "apiKey",
				In:          "header",
				Name:        tokenHeader,
				Description: "Raw signed token as issued by POST /api/users or /api/users/login.",
			},
		},
	}
	doc.Components = &components

	doc.Paths = openapi3.NewPaths()
	doc.Paths.Set("/", &openapi3.PathItem{Get: homeOperation()})
	doc.Paths.Set("/api/users", &openapi3.PathItem{
		Get:  listUsersOperation(),
		Post: createUserOperation(),
	})
	doc.Paths.Set("/api/users/login", &openapi3.PathItem{Post: loginOperation()})
	doc.Paths.Set("/api/users/{id}", &openapi3.PathItem{
		Get:    getUserOperation(),
		Patch:  updateUserOperation(),
		Delete: deleteUserOperation(),
		Parameters: openapi3.Parameters{
			{Value: openapi3.NewPathParameter("id").WithSchema(openapi3.NewInt64Schema())},
		},
	})
	doc.Paths.Set("/api/health", &openapi3.PathItem{Get: healthOperation()})

	return doc
}

func userSchema() *openapi3.Schema {
	return openapi3.NewObjectSchema().
		WithProperty("id", openapi3.NewInt64Schema()).
		WithProperty("username", openapi3.NewStringSchema()).
		WithProperty("isadmin", openapi3.NewBoolSchema())
}

func messageSchema() *openapi3.Schema {
	return openapi3.NewObjectSchema().WithProperty("message", openapi3.NewStringSchema())
}

func credentialsSchema() *openapi3.Schema {
	s := openapi3.NewObjectSchema().
		WithProperty("username", openapi3.NewStringSchema()).
		WithProperty("password", openapi3.NewStringSchema().WithFormat("password"))
	s.Required = []string{"username", "password"}
	return s
}

func ref(name string) *openapi3.SchemaRef {
	return openapi3.NewSchemaRef("#/components/schemas/"+name, nil)
}

func jsonResponse(desc string, schema *openapi3.SchemaRef) *openapi3.Response {
	return openapi3.NewResponse().
		WithDescription(desc).
		WithContent(openapi3.NewContentWithJSONSchemaRef(schema))
}

func operation(id, summary string, secured bool) *openapi3.Operation {
	op := openapi3.NewOperation()
	op.OperationID = id
	op.Summary = summary
	if secured {
		op.Security = &openapi3.SecurityRequirements{{"token": []string{}}}
		op.AddResponse(http.StatusUnauthorized, jsonResponse(unauthorizedDesc, ref("Message")))
	}
	op.AddResponse(0, jsonResponse("Unexpected failure", ref("Message")))
	return op
}

func homeOperation() *openapi3.Operation {
	op := operation("home", "Welcome message", false)
	op.AddResponse(http.StatusOK, jsonResponse("Welcome", ref("Message")))
	return op
}

func healthOperation() *openapi3.Operation {
	op := operation("health", "Store liveness", false)
	status := openapi3.NewObjectSchema().WithProperty("status", openapi3.NewStringSchema())
	op.AddResponse(http.StatusOK, jsonResponse("Store reachable", status.NewRef()))
	op.AddResponse(http.StatusServiceUnavailable, jsonResponse("Store unreachable", status.NewRef()))
	return op
}

func listUsersOperation() *openapi3.Operation {
	op := operation("listUsers", "List all users (admin only)", true)
	list := openapi3.NewArraySchema().WithItems(userSchema())
	op.AddResponse(http.StatusOK, jsonResponse("All users, passwords omitted", list.NewRef()))
	return op
}

func getUserOperation() *openapi3.Operation {
	op := operation("getUser", "Read one user (admin or self)", true)
	op.AddResponse(http.StatusOK, jsonResponse("The user, password omitted; empty object if absent", ref("User")))
	return op
}

func updateUserOperation() *openapi3.Operation {
	op := operation("updateUser", "Update username and/or password (admin or self)", true)
	body := openapi3.NewObjectSchema().
		WithProperty("username", openapi3.NewStringSchema()).
		WithProperty("password", openapi3.NewStringSchema().WithFormat("password"))
	op.RequestBody = &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().WithJSONSchema(body)}

	updated := userSchema().WithProperty("password", openapi3.NewStringSchema())
	op.AddResponse(http.StatusCreated, jsonResponse("Updated user including stored password hash", updated.NewRef()))
	op.AddResponse(http.StatusOK, jsonResponse("No fields supplied, or unknown id", ref("Message")))
	op.AddResponse(http.StatusBadRequest, jsonResponse("Malformed body", ref("Message")))
	return op
}

func deleteUserOperation() *openapi3.Operation {
	op := operation("deleteUser", "Delete a user (admin or self)", true)
	op.AddResponse(http.StatusOK, jsonResponse(`"Deleted..." or "Invalid Id"`, ref("Message")))
	return op
}

func createUserOperation() *openapi3.Operation {
	op := operation("createUser", "Create an account", false)
	op.RequestBody = &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchema(credentialsSchema()),
	}
	created := openapi3.NewObjectSchema().
		WithProperty("username", openapi3.NewStringSchema()).
		WithProperty("access_token", openapi3.NewStringSchema())
	resp := jsonResponse("Account created; token also in the Authorization header", created.NewRef())
	resp.Headers = tokenHeaders()
	op.AddResponse(http.StatusCreated, resp)
	op.AddResponse(http.StatusBadRequest, jsonResponse("Username or password missing", ref("Message")))
	return op
}

func loginOperation() *openapi3.Operation {
	op := operation("login", "Exchange credentials for a token", false)
	op.RequestBody = &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchema(credentialsSchema()),
	}
	token := openapi3.NewObjectSchema().WithProperty("token", openapi3.NewStringSchema())
	resp := jsonResponse("Authenticated; token also in the Authorization header", token.NewRef())
	resp.Headers = tokenHeaders()
	op.AddResponse(http.StatusOK, resp)
	op.AddResponse(http.StatusBadRequest, jsonResponse("Missing fields or credentials mismatch", ref("Message")))
	return op
}

func tokenHeaders() openapi3.Headers {
	return openapi3.Headers{
		tokenHeader: &openapi3.HeaderRef{
			Value: &openapi3.Header{
				Parameter: openapi3.Parameter{Schema: openapi3.NewStringSchema().NewRef()},
			},
		},
	}
}
