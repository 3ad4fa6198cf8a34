package azure

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/network/armnetwork"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/storage/armstorage"

	"github.com/cloudmap/cloudmap/internal/models"
)

// ── fakes ───────────────────────────────────────────────────────────────────

// pagerOf serves pages in order, then reports no more pages. A non-nil err
// is returned instead of the first page.
func pagerOf[T any](pages []T, err error) *runtime.Pager[T] {
	i := 0
	return runtime.NewPager(runtime.PagingHandler[T]{
		More: func(T) bool { return i < len(pages) },
		Fetcher: func(context.Context, *T) (T, error) {
			var zero T
			if err != nil || i >= len(pages) {
				return zero, err
			}
			page := pages[i]
			i++
			return page, nil
		},
	})
}

type fakeNSGClient struct {
	pages []armnetwork.SecurityGroupsClientListAllResponse
	err   error
}

func (f *fakeNSGClient) NewListAllPager(*armnetwork.SecurityGroupsClientListAllOptions) *runtime.Pager[armnetwork.SecurityGroupsClientListAllResponse] {
	return pagerOf(f.pages, f.err)
}

type fakeStorageClient struct {
	pages    []armstorage.AccountsClientListResponse
	listErr  error
	props    map[string]*armstorage.AccountProperties
	propErrs map[string]error
	lookups  []string
}

func (f *fakeStorageClient) NewListPager(*armstorage.AccountsClientListOptions) *runtime.Pager[armstorage.AccountsClientListResponse] {
	return pagerOf(f.pages, f.listErr)
}

func (f *fakeStorageClient) GetProperties(_ context.Context, rg, name string, _ *armstorage.AccountsClientGetPropertiesOptions) (armstorage.AccountsClientGetPropertiesResponse, error) {
	f.lookups = append(f.lookups, rg+"/"+name)
	if err := f.propErrs[name]; err != nil {
		return armstorage.AccountsClientGetPropertiesResponse{}, err
	}
	return armstorage.AccountsClientGetPropertiesResponse{
		Account: armstorage.Account{Name: to.Ptr(name), Properties: f.props[name]},
	}, nil
}

type fakeCredential struct{ err error }

func (f fakeCredential) GetToken(context.Context, policy.TokenRequestOptions) (azcore.AccessToken, error) {
	if f.err != nil {
		return azcore.AccessToken{}, f.err
	}
	return azcore.AccessToken{Token: "t", ExpiresOn: time.Now().Add(time.Hour)}, nil
}

const (
	nsgID  = "/subscriptions/0000/resourceGroups/rg-web/providers/Microsoft.Network/networkSecurityGroups/web-nsg"
	acctID = "/subscriptions/0000/resourceGroups/rg-data/providers/Microsoft.Storage/storageAccounts/datalake"
)

// ── NSGs ────────────────────────────────────────────────────────────────────

func TestCollectNSGs_BuildsRecords(t *testing.T) {
	inbound := armnetwork.SecurityRuleDirectionInbound
	tcp := armnetwork.SecurityRuleProtocolTCP
	client := &fakeNSGClient{pages: []armnetwork.SecurityGroupsClientListAllResponse{
		{SecurityGroupListResult: armnetwork.SecurityGroupListResult{Value: []*armnetwork.SecurityGroup{{
			ID:   to.Ptr(nsgID),
			Name: to.Ptr("web-nsg"),
			Properties: &armnetwork.SecurityGroupPropertiesFormat{SecurityRules: []*armnetwork.SecurityRule{
				{
					Name: to.Ptr("allow-ssh"),
					Properties: &armnetwork.SecurityRulePropertiesFormat{
						Direction:            &inbound,
						Protocol:             &tcp,
						DestinationPortRange: to.Ptr("22"),
						SourceAddressPrefix:  to.Ptr("*"),
					},
				},
				{
					Name: to.Ptr("allow-web"),
					Properties: &armnetwork.SecurityRulePropertiesFormat{
						Direction:             &inbound,
						Protocol:              &tcp,
						DestinationPortRanges: []*string{to.Ptr("80"), to.Ptr("443")},
						SourceAddressPrefix:   to.Ptr("Internet"),
					},
				},
			}},
		}}}},
		{SecurityGroupListResult: armnetwork.SecurityGroupListResult{Value: []*armnetwork.SecurityGroup{{
			ID:   to.Ptr("/subscriptions/0000/resourceGroups/rg-empty/providers/Microsoft.Network/networkSecurityGroups/empty"),
			Name: to.Ptr("empty"),
		}}}},
	}}

	got, err := collectNSGs(context.Background(), client)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []models.NetworkSecurityGroup{
		{
			Name: "web-nsg", ID: nsgID, ResourceGroup: "rg-web",
			Rules: []models.NetworkRule{
				{Name: "allow-ssh", Direction: "Inbound", Protocol: "Tcp", DestinationPortRange: "22", SourceAddressPrefix: "*"},
				{Name: "allow-web", Direction: "Inbound", Protocol: "Tcp", DestinationPortRange: "80,443", SourceAddressPrefix: "Internet"},
			},
		},
		{
			Name:          "empty",
			ID:            "/subscriptions/0000/resourceGroups/rg-empty/providers/Microsoft.Network/networkSecurityGroups/empty",
			ResourceGroup: "rg-empty",
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v\nwant %+v", got, want)
	}
}

func TestToNetworkRule_PortRanges(t *testing.T) {
	cases := []struct {
		name   string
		single *string
		ranges []*string
		want   string
	}{
		{"single wins", to.Ptr("22"), []*string{to.Ptr("80")}, "22"},
		{"joined", nil, []*string{to.Ptr("80"), to.Ptr("443"), to.Ptr("8000-8080")}, "80,443,8000-8080"},
		{"nil entries skipped", nil, []*string{nil, to.Ptr("80"), nil}, "80"},
		{"none", nil, nil, ""},
	}
	for _, tc := range cases {
		rule := &armnetwork.SecurityRule{
			Name: to.Ptr("r"),
			Properties: &armnetwork.SecurityRulePropertiesFormat{
				DestinationPortRange:  tc.single,
				DestinationPortRanges: tc.ranges,
			},
		}
		if got := toNetworkRule(rule).DestinationPortRange; got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestCollectNSGs_ListFailure(t *testing.T) {
	respErr := &azcore.ResponseError{ErrorCode: "AuthorizationFailed", StatusCode: http.StatusForbidden}
	_, err := collectNSGs(context.Background(), &fakeNSGClient{err: respErr})
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "list network security groups: AuthorizationFailed (HTTP 403)" {
		t.Errorf("got %q", err.Error())
	}
	var re *azcore.ResponseError
	if !errors.As(err, &re) {
		t.Error("response error must stay in the chain")
	}
}

// ── storage ─────────────────────────────────────────────────────────────────

func TestCollectStorageAccounts_AndNetworkRuleSet(t *testing.T) {
	allow := armstorage.DefaultActionAllow
	client := &fakeStorageClient{
		pages: []armstorage.AccountsClientListResponse{{
			AccountListResult: armstorage.AccountListResult{Value: []*armstorage.Account{
				{ID: to.Ptr(acctID), Name: to.Ptr("datalake")},
				{ID: to.Ptr("/subscriptions/0000/resourceGroups/rg-data/providers/Microsoft.Storage/storageAccounts/bare"), Name: to.Ptr("bare")},
			}},
		}},
		props: map[string]*armstorage.AccountProperties{
			"datalake": {NetworkRuleSet: &armstorage.NetworkRuleSet{DefaultAction: &allow}},
		},
	}
	c := &DefaultCollector{clients: &armClients{Storage: client}}

	accounts, accessor, err := c.CollectStorageAccounts(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []models.StorageAccount{
		{Name: "datalake", ID: acctID, ResourceGroup: "rg-data"},
		{Name: "bare", ID: "/subscriptions/0000/resourceGroups/rg-data/providers/Microsoft.Storage/storageAccounts/bare", ResourceGroup: "rg-data"},
	}
	if !reflect.DeepEqual(accounts, want) {
		t.Errorf("accounts: got %+v", accounts)
	}

	set, err := accessor.NetworkRuleSet(context.Background(), accounts[0])
	if err != nil || set == nil || set.DefaultAction != "Allow" {
		t.Errorf("datalake: got %+v, %v", set, err)
	}
	set, err = accessor.NetworkRuleSet(context.Background(), accounts[1])
	if err != nil || set != nil {
		t.Errorf("bare: want nil rule set, got %+v, %v", set, err)
	}
	if !reflect.DeepEqual(client.lookups, []string{"rg-data/datalake", "rg-data/bare"}) {
		t.Errorf("lookups: %v", client.lookups)
	}
}

func TestNetworkRuleSet_Errors(t *testing.T) {
	client := &fakeStorageClient{propErrs: map[string]error{
		"locked": &azcore.ResponseError{ErrorCode: "ResourceNotFound", StatusCode: http.StatusNotFound},
	}}
	r := &networkRuleReader{client: client}

	_, err := r.NetworkRuleSet(context.Background(), models.StorageAccount{Name: "locked", ResourceGroup: "rg"})
	if err == nil || err.Error() != "ResourceNotFound (HTTP 404)" {
		t.Errorf("got %v", err)
	}

	_, err = r.NetworkRuleSet(context.Background(), models.StorageAccount{Name: "orphan"})
	if err == nil {
		t.Error("expected error for account without resource group")
	}
	if len(client.lookups) != 1 {
		t.Errorf("orphan account must not reach the API: %v", client.lookups)
	}
}

// ── connector ───────────────────────────────────────────────────────────────

func TestConnect_PassesSubscriptionExplicitly(t *testing.T) {
	var gotSub string
	var gotSP *models.AzureCredentials
	c := &DefaultConnector{
		newCredential: func(sp *models.AzureCredentials) (azcore.TokenCredential, error) {
			gotSP = sp
			return fakeCredential{}, nil
		},
		factory: func(sub string, _ azcore.TokenCredential) (*armClients, error) {
			gotSub = sub
			return &armClients{NSG: &fakeNSGClient{}, Storage: &fakeStorageClient{}}, nil
		},
	}
	sp := &models.AzureCredentials{TenantID: "t", ClientID: "c", ClientSecret: "s"}
	if _, err := c.Connect(context.Background(), "sub-123", sp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotSub != "sub-123" || gotSP != sp {
		t.Errorf("sub=%q sp=%v", gotSub, gotSP)
	}
}

func TestConnect_Failures(t *testing.T) {
	credErr := errors.New("no credential source")
	c := &DefaultConnector{
		newCredential: func(*models.AzureCredentials) (azcore.TokenCredential, error) { return nil, credErr },
		factory:       func(string, azcore.TokenCredential) (*armClients, error) { return &armClients{}, nil },
	}
	if _, err := c.Connect(context.Background(), "", nil); err == nil {
		t.Error("expected error for empty subscription")
	}
	if _, err := c.Connect(context.Background(), "sub", nil); !errors.Is(err, credErr) {
		t.Errorf("want credential error, got %v", err)
	}
}

func TestNewCredential_IncompleteServicePrincipal(t *testing.T) {
	_, err := NewCredential(&models.AzureCredentials{TenantID: "t", ClientID: "c"})
	if err == nil {
		t.Error("expected error for missing client secret")
	}
}

func TestVerifyCredential(t *testing.T) {
	if err := VerifyCredential(context.Background(), fakeCredential{}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := VerifyCredential(context.Background(), fakeCredential{err: errors.New("expired")}); err == nil {
		t.Error("expected error")
	}
}

func TestResourceGroupOf(t *testing.T) {
	if got := resourceGroupOf(nsgID); got != "rg-web" {
		t.Errorf("got %q", got)
	}
	if got := resourceGroupOf("not-an-id"); got != "" {
		t.Errorf("got %q; want empty", got)
	}
}
