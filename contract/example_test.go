package contract_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"

	requester "github.com/cartage-http/declare"
	"github.com/cartage-http/declare/contract"
)

type widget struct {
	Name string `json:"name"`
}

type listWidgetsParams struct {
	Owner string `query:"owner"`
}

// Example wires a declared "list widgets" operation, described with the
// struct-tag dialect, through a ClientFactory whose default Transport runs
// on the root package's Requester/Middleware stack (here: gzip
// decompression), and calls it synchronously through the Dispatcher.
func Example() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]widget{{Name: "left-flange"}, {Name: "right-flange"}})
	}))
	defer srv.Close()

	var c contract.Contract
	listSpec, err := c.Describe(contract.StructOperation{
		InterfaceName: "Widgets",
		MethodName:    "list",
		Verb:          "GET",
		Path:          "/widgets",
		Params:        listWidgetsParams{},
		ReturnType:    reflect.TypeOf([]widget{}),
	})
	if err != nil {
		fmt.Println("describe error:", err)
		return
	}

	target := contract.NewRequestIDTarget(contract.NewBaseURLTarget("Widgets", srv.URL), "")

	dispatcher, err := contract.ClientFactory{Contract: c}.Build(target, "Widgets", []contract.OperationSpec{listSpec}, contract.Collaborators{
		Transport: contract.NewDefaultTransport(requester.Decompress()),
	})
	if err != nil {
		fmt.Println("build error:", err)
		return
	}
	defer dispatcher.Close()

	result, err := dispatcher.Call(context.Background(), listSpec.ConfigKey(), "acme")
	if err != nil {
		fmt.Println("call error:", err)
		return
	}

	var names []string
	for _, w := range result.([]widget) {
		names = append(names, w.Name)
	}
	fmt.Println(names)
	// Output: [left-flange right-flange]
}
